package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// ReferenceResolver resolves indirect references. The scanner needs one to
// resolve an indirect /Length when extracting stream data.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Scanner parses serialized PDF objects from raw file bytes. It operates
// on the full document buffer so that indirect objects can be scanned at
// arbitrary cross-reference offsets.
type Scanner struct {
	data     []byte
	pos      int
	resolver ReferenceResolver
}

// NewScanner creates a scanner over data starting at offset 0.
func NewScanner(data []byte) *Scanner {
	return &Scanner{data: data}
}

// SetResolver supplies a resolver used for indirect stream lengths.
func (s *Scanner) SetResolver(r ReferenceResolver) {
	s.resolver = r
}

// SeekTo positions the scanner at the given byte offset.
func (s *Scanner) SeekTo(offset int64) error {
	if offset < 0 || offset > int64(len(s.data)) {
		return fmt.Errorf("offset %d outside file (size %d)", offset, len(s.data))
	}
	s.pos = int(offset)
	return nil
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int64 {
	return int64(s.pos)
}

// ScanIndirectObject parses "objNum gen obj ... endobj" at the current
// position. When the body is a dictionary followed by the stream keyword,
// the stream data is extracted using the /Length entry.
func (s *Scanner) ScanIndirectObject() (*IndirectObject, error) {
	num, ok := s.scanUint()
	if !ok {
		return nil, fmt.Errorf("object number expected at offset %d", s.pos)
	}
	gen, ok := s.scanUint()
	if !ok {
		return nil, fmt.Errorf("generation number expected at offset %d", s.pos)
	}
	if !s.scanKeyword("obj") {
		return nil, fmt.Errorf("keyword obj expected at offset %d", s.pos)
	}

	obj, err := s.ScanObject()
	if err != nil {
		return nil, err
	}

	// A dictionary followed by the stream keyword is a stream object.
	if dict, isDict := obj.(Dict); isDict {
		s.skipSpace()
		if s.scanKeyword("stream") {
			stream, err := s.scanStreamData(dict)
			if err != nil {
				return nil, err
			}
			obj = stream
		}
	}

	s.skipSpace()
	s.scanKeyword("endobj") // tolerated if missing

	return &IndirectObject{
		Ref:    IndirectRef{Number: num, Generation: gen},
		Object: obj,
	}, nil
}

// ScanObject parses the next object: null, boolean, number, string, name,
// array, dictionary, or indirect reference.
func (s *Scanner) ScanObject() (Object, error) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return nil, fmt.Errorf("unexpected end of data")
	}

	c := s.data[s.pos]
	switch {
	case c == '/':
		return s.scanName()
	case c == '(':
		return s.scanLiteralString()
	case c == '[':
		return s.scanArray()
	case c == '<':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
			return s.scanDict()
		}
		return s.scanHexString()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return s.scanNumberOrRef()
	case s.scanKeyword("null"):
		return Null{}, nil
	case s.scanKeyword("true"):
		return Bool(true), nil
	case s.scanKeyword("false"):
		return Bool(false), nil
	}
	return nil, fmt.Errorf("unexpected byte %q at offset %d", c, s.pos)
}

// scanNumberOrRef parses a number, looking ahead for the "gen R" suffix
// that turns two integers into an indirect reference.
func (s *Scanner) scanNumberOrRef() (Object, error) {
	start := s.pos
	num, real, err := s.scanNumber()
	if err != nil {
		return nil, err
	}
	if real != nil {
		return *real, nil
	}

	// Integer: try "gen R".
	save := s.pos
	if gen, ok := s.scanUint(); ok && s.scanKeyword("R") {
		return IndirectRef{Number: int(*num), Generation: gen}, nil
	}
	s.pos = save
	if num == nil {
		return nil, fmt.Errorf("malformed number at offset %d", start)
	}
	return *num, nil
}

// scanNumber reads one numeric token, returning exactly one of the results.
func (s *Scanner) scanNumber() (*Int, *Real, error) {
	s.skipSpace()
	start := s.pos
	if s.pos < len(s.data) && (s.data[s.pos] == '+' || s.data[s.pos] == '-') {
		s.pos++
	}
	hasDot := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c >= '0' && c <= '9' {
			s.pos++
		} else if c == '.' && !hasDot {
			hasDot = true
			s.pos++
		} else {
			break
		}
	}
	tok := string(s.data[start:s.pos])
	if tok == "" || tok == "+" || tok == "-" || tok == "." {
		return nil, nil, fmt.Errorf("malformed number %q at offset %d", tok, start)
	}
	if hasDot {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid real %q: %w", tok, err)
		}
		r := Real(v)
		return nil, &r, nil
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid integer %q: %w", tok, err)
	}
	i := Int(v)
	return &i, nil, nil
}

// scanUint reads a bare non-negative integer, or reports false without
// consuming input.
func (s *Scanner) scanUint() (int, bool) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return 0, false
	}
	// A following '.' means this was the integer part of a real.
	if s.pos < len(s.data) && s.data[s.pos] == '.' {
		s.pos = start
		return 0, false
	}
	v, err := strconv.Atoi(string(s.data[start:s.pos]))
	if err != nil {
		s.pos = start
		return 0, false
	}
	return v, true
}

// scanKeyword consumes the keyword if it appears at the current position
// followed by a whitespace or delimiter boundary.
func (s *Scanner) scanKeyword(kw string) bool {
	s.skipSpace()
	end := s.pos + len(kw)
	if end > len(s.data) || string(s.data[s.pos:end]) != kw {
		return false
	}
	if end < len(s.data) {
		c := s.data[end]
		if !isSpaceByte(c) && !isDelimByte(c) {
			return false
		}
	}
	s.pos = end
	return true
}

func (s *Scanner) scanName() (Object, error) {
	s.pos++ // '/'
	var buf bytes.Buffer
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isSpaceByte(c) || isDelimByte(c) {
			break
		}
		if c == '#' && s.pos+2 < len(s.data) {
			hi, err1 := hexNibble(s.data[s.pos+1])
			lo, err2 := hexNibble(s.data[s.pos+2])
			if err1 == nil && err2 == nil {
				buf.WriteByte(hi<<4 | lo)
				s.pos += 3
				continue
			}
		}
		buf.WriteByte(c)
		s.pos++
	}
	return Name(buf.String()), nil
}

func (s *Scanner) scanLiteralString() (Object, error) {
	s.pos++ // '('
	var buf bytes.Buffer
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c == '\\' && s.pos+1 < len(s.data):
			s.pos++
			e := s.data[s.pos]
			switch e {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(e)
			case '\r':
				// Line continuation; swallow an LF after CR.
				if s.pos+1 < len(s.data) && s.data[s.pos+1] == '\n' {
					s.pos++
				}
			case '\n':
				// Line continuation.
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && s.pos+1 < len(s.data); i++ {
					d := s.data[s.pos+1]
					if d < '0' || d > '7' {
						break
					}
					v = v*8 + int(d-'0')
					s.pos++
				}
				buf.WriteByte(byte(v & 0xFF))
			default:
				buf.WriteByte(e)
			}
			s.pos++
		case c == '(':
			depth++
			buf.WriteByte(c)
			s.pos++
		case c == ')':
			depth--
			s.pos++
			if depth == 0 {
				return String(buf.String()), nil
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
			s.pos++
		}
	}
	return nil, fmt.Errorf("unclosed literal string")
}

func (s *Scanner) scanHexString() (Object, error) {
	s.pos++ // '<'
	var buf bytes.Buffer
	var hi byte
	havePending := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			if havePending {
				buf.WriteByte(hi << 4) // odd count: trailing zero nibble
			}
			return String(buf.String()), nil
		}
		if isSpaceByte(c) {
			continue
		}
		v, err := hexNibble(c)
		if err != nil {
			return nil, fmt.Errorf("hex string: %w", err)
		}
		if havePending {
			buf.WriteByte(hi<<4 | v)
			havePending = false
		} else {
			hi = v
			havePending = true
		}
	}
	return nil, fmt.Errorf("unclosed hex string")
}

func (s *Scanner) scanArray() (Object, error) {
	s.pos++ // '['
	var arr Array
	for {
		s.skipSpace()
		if s.pos >= len(s.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return arr, nil
		}
		obj, err := s.ScanObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (s *Scanner) scanDict() (Object, error) {
	s.pos += 2 // '<<'
	dict := make(Dict)
	for {
		s.skipSpace()
		if s.pos+1 < len(s.data) && s.data[s.pos] == '>' && s.data[s.pos+1] == '>' {
			s.pos += 2
			return dict, nil
		}
		if s.pos >= len(s.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if s.data[s.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name at offset %d", s.pos)
		}
		key, err := s.scanName()
		if err != nil {
			return nil, err
		}
		val, err := s.ScanObject()
		if err != nil {
			return nil, err
		}
		dict[string(key.(Name))] = val
	}
}

// scanStreamData extracts raw stream bytes following the stream keyword.
// The /Length entry determines the extent; an indirect length is resolved
// through the configured resolver, and as a last resort the endstream
// keyword is located by search.
func (s *Scanner) scanStreamData(dict Dict) (*Stream, error) {
	// The stream keyword is followed by CRLF or LF.
	if s.pos < len(s.data) && s.data[s.pos] == '\r' {
		s.pos++
	}
	if s.pos < len(s.data) && s.data[s.pos] == '\n' {
		s.pos++
	}
	start := s.pos

	length := -1
	switch v := dict.Get("Length").(type) {
	case Int:
		length = int(v)
	case IndirectRef:
		if s.resolver != nil {
			obj, err := s.resolver.ResolveReference(v)
			if err != nil {
				return nil, fmt.Errorf("resolve stream /Length: %w", err)
			}
			if n, ok := obj.(Int); ok {
				length = int(n)
			}
		}
	}

	if length >= 0 && start+length <= len(s.data) {
		s.pos = start + length
		s.skipSpace()
		if s.scanKeyword("endstream") {
			return &Stream{Dict: dict, Data: s.data[start : start+length]}, nil
		}
		// Length was wrong; fall through to searching.
		s.pos = start
	}

	idx := bytes.Index(s.data[start:], []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("endstream not found")
	}
	end := start + idx
	// Trim the EOL that precedes endstream.
	for end > start && (s.data[end-1] == '\n' || s.data[end-1] == '\r') {
		end--
	}
	s.pos = start + idx
	s.scanKeyword("endstream")
	return &Stream{Dict: dict, Data: s.data[start:end]}, nil
}

// skipSpace advances past whitespace and comments.
func (s *Scanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isSpaceByte(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		break
	}
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimByte(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit %q", c)
}
