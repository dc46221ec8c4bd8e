package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// XRefEntry locates one object. Regular objects live at a byte offset in
// the file; compressed objects live at an index inside an object stream.
type XRefEntry struct {
	Offset     int64 // Byte offset in file (regular objects)
	Generation int
	InUse      bool
	InStream   bool // Object is stored inside an object stream
	StreamNum  int  // Object number of the containing object stream
	StreamIdx  int  // Index within the object stream
}

// XRefTable maps object numbers to their locations and carries the trailer
// dictionary of the cross-reference section it was parsed from.
type XRefTable struct {
	Entries map[int]*XRefEntry
	Trailer Dict
}

// NewXRefTable creates a new empty XRef table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Set adds or updates an XRef entry
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// Size returns the number of entries in the table
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// Merge overlays other's entries onto x without replacing entries already
// present. Cross-reference sections are merged newest-first, and the newest
// section wins, so existing entries are kept.
func (x *XRefTable) Merge(other *XRefTable) {
	for num, entry := range other.Entries {
		if _, exists := x.Entries[num]; !exists {
			x.Entries[num] = entry
		}
	}
	for key, val := range other.Trailer {
		if !x.Trailer.Has(key) {
			x.Trailer[key] = val
		}
	}
}

// FindStartXRef locates the byte offset recorded after the startxref
// keyword near the end of the file.
func FindStartXRef(data []byte) (int64, error) {
	tail := data
	if len(tail) > 1024 {
		tail = tail[len(tail)-1024:]
	}

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref keyword not found")
	}

	rest := tail[idx+len("startxref"):]
	fields := bytes.Fields(rest)
	if len(fields) == 0 {
		return 0, fmt.Errorf("startxref offset missing")
	}

	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset %q: %w", fields[0], err)
	}
	return offset, nil
}

// ParseXRefChain parses the cross-reference section at offset and follows
// /Prev (and hybrid-file /XRefStm) links through all incremental updates,
// returning a single merged table whose trailer is the newest one.
func ParseXRefChain(data []byte, offset int64) (*XRefTable, error) {
	merged := NewXRefTable()
	seen := make(map[int64]bool) // guards against /Prev cycles

	for {
		if seen[offset] {
			return nil, fmt.Errorf("cross-reference chain cycles at offset %d", offset)
		}
		seen[offset] = true

		table, err := parseXRefSection(data, offset)
		if err != nil {
			return nil, err
		}
		merged.Merge(table)

		// Hybrid files carry a cross-reference stream alongside the table.
		if stmOff, ok := table.Trailer.GetInt("XRefStm"); ok && !seen[int64(stmOff)] {
			seen[int64(stmOff)] = true
			if stm, err := parseXRefSection(data, int64(stmOff)); err == nil {
				merged.Merge(stm)
			}
		}

		prev, ok := table.Trailer.GetInt("Prev")
		if !ok {
			return merged, nil
		}
		offset = int64(prev)
	}
}

// parseXRefSection parses a single cross-reference section, which is
// either the traditional ASCII table or an indirect object holding a
// /Type /XRef stream.
func parseXRefSection(data []byte, offset int64) (*XRefTable, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("cross-reference offset %d outside file", offset)
	}

	s := NewScanner(data)
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}

	if s.scanKeyword("xref") {
		return parseXRefTable(s)
	}
	return parseXRefStream(s)
}

// parseXRefTable parses the traditional table form: subsection headers of
// "first count" followed by fixed-width entry lines, then the trailer.
func parseXRefTable(s *Scanner) (*XRefTable, error) {
	table := NewXRefTable()

	for {
		s.skipSpace()
		if s.scanKeyword("trailer") {
			obj, err := s.ScanObject()
			if err != nil {
				return nil, fmt.Errorf("trailer: %w", err)
			}
			dict, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is not a dictionary, got %T", obj)
			}
			table.Trailer = dict
			return table, nil
		}

		first, ok := s.scanUint()
		if !ok {
			return nil, fmt.Errorf("subsection header expected at offset %d", s.Pos())
		}
		count, ok := s.scanUint()
		if !ok {
			return nil, fmt.Errorf("subsection count expected at offset %d", s.Pos())
		}

		for i := 0; i < count; i++ {
			off, ok1 := s.scanUint()
			gen, ok2 := s.scanUint()
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("malformed entry in subsection %d", first)
			}
			s.skipSpace()
			var flag byte
			if s.pos < len(s.data) {
				flag = s.data[s.pos]
				s.pos++
			}
			if flag != 'n' && flag != 'f' {
				return nil, fmt.Errorf("invalid entry flag %q for object %d", flag, first+i)
			}
			table.Set(first+i, &XRefEntry{
				Offset:     int64(off),
				Generation: gen,
				InUse:      flag == 'n',
			})
		}
	}
}

// parseXRefStream parses the stream form (PDF 1.5+): an indirect stream
// object whose decoded data holds fixed-width binary entries described by
// the /W array, optionally partitioned by /Index.
func parseXRefStream(s *Scanner) (*XRefTable, error) {
	ind, err := s.ScanIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("cross-reference stream: %w", err)
	}
	stream, ok := ind.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("cross-reference object %d is not a stream", ind.Ref.Number)
	}
	if name, _ := stream.Dict.GetName("Type"); name != "XRef" {
		return nil, fmt.Errorf("stream at cross-reference offset has type %q", name)
	}

	widths, ok := stream.Dict.GetArray("W")
	if !ok || len(widths) < 3 {
		return nil, fmt.Errorf("cross-reference stream missing /W")
	}
	w := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, ok := widths[i].(Int)
		if !ok || n < 0 {
			return nil, fmt.Errorf("invalid /W element %d", i)
		}
		w[i] = int(n)
	}

	size, ok := stream.Dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("cross-reference stream missing /Size")
	}

	// /Index defaults to a single run covering [0, Size).
	runs := []int{0, int(size)}
	if idx, ok := stream.Dict.GetArray("Index"); ok {
		if len(idx)%2 != 0 {
			return nil, fmt.Errorf("odd /Index length %d", len(idx))
		}
		runs = runs[:0]
		for _, v := range idx {
			n, ok := v.(Int)
			if !ok {
				return nil, fmt.Errorf("non-integer /Index element")
			}
			runs = append(runs, int(n))
		}
	}

	decoded, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode cross-reference stream: %w", err)
	}

	entrySize := w[0] + w[1] + w[2]
	if entrySize == 0 {
		return nil, fmt.Errorf("zero-width cross-reference entries")
	}

	table := NewXRefTable()
	table.Trailer = stream.Dict

	pos := 0
	for r := 0; r+1 < len(runs); r += 2 {
		start, count := runs[r], runs[r+1]
		for i := 0; i < count; i++ {
			if pos+entrySize > len(decoded) {
				return nil, fmt.Errorf("cross-reference stream truncated at entry %d", start+i)
			}
			f1 := readBigEndian(decoded[pos : pos+w[0]])
			f2 := readBigEndian(decoded[pos+w[0] : pos+w[0]+w[1]])
			f3 := readBigEndian(decoded[pos+w[0]+w[1] : pos+entrySize])
			pos += entrySize

			// A zero-width first field defaults to type 1.
			if w[0] == 0 {
				f1 = 1
			}

			entry := &XRefEntry{}
			switch f1 {
			case 0: // free
				entry.InUse = false
			case 1: // regular object at byte offset
				entry.Offset = f2
				entry.Generation = int(f3)
				entry.InUse = true
			case 2: // compressed object inside an object stream
				entry.InUse = true
				entry.InStream = true
				entry.StreamNum = int(f2)
				entry.StreamIdx = int(f3)
			default:
				continue // reserved types are ignored per spec
			}
			table.Set(start+i, entry)
		}
	}

	return table, nil
}

// readBigEndian decodes a big-endian unsigned integer of up to 8 bytes.
func readBigEndian(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}
