package core

import "fmt"

// ObjectStream holds the objects packed inside a /Type /ObjStm stream.
// The decoded stream starts with N pairs of "objnum offset" integers,
// followed at /First by the serialized objects themselves.
type ObjectStream struct {
	numbers []int
	offsets []int
	data    []byte // decoded stream data from /First onward
}

// ParseObjectStream decodes and indexes an object stream.
func ParseObjectStream(stream *Stream) (*ObjectStream, error) {
	if name, _ := stream.Dict.GetName("Type"); name != "ObjStm" {
		return nil, fmt.Errorf("stream has type %q, want ObjStm", name)
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream missing /N")
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream missing /First")
	}

	decoded, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode object stream: %w", err)
	}
	if int(first) > len(decoded) {
		return nil, fmt.Errorf("object stream /First %d beyond data length %d", first, len(decoded))
	}

	os := &ObjectStream{
		numbers: make([]int, 0, n),
		offsets: make([]int, 0, n),
		data:    decoded[first:],
	}

	s := NewScanner(decoded[:first])
	for i := 0; i < int(n); i++ {
		num, ok1 := s.scanUint()
		off, ok2 := s.scanUint()
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("malformed object stream header at pair %d", i)
		}
		os.numbers = append(os.numbers, num)
		os.offsets = append(os.offsets, off)
	}

	return os, nil
}

// Count returns the number of objects in the stream.
func (os *ObjectStream) Count() int {
	return len(os.numbers)
}

// GetByIndex parses the object at the given index within the stream.
func (os *ObjectStream) GetByIndex(index int) (Object, error) {
	if index < 0 || index >= len(os.numbers) {
		return nil, fmt.Errorf("object stream index %d out of range [0,%d)", index, len(os.numbers))
	}
	if os.offsets[index] > len(os.data) {
		return nil, fmt.Errorf("object stream offset %d beyond data length %d", os.offsets[index], len(os.data))
	}

	s := NewScanner(os.data)
	if err := s.SeekTo(int64(os.offsets[index])); err != nil {
		return nil, err
	}
	return s.ScanObject()
}

// GetByNumber parses the object with the given object number, which must
// match one recorded in the stream's header pairs.
func (os *ObjectStream) GetByNumber(objNum int) (Object, error) {
	for i, num := range os.numbers {
		if num == objNum {
			return os.GetByIndex(i)
		}
	}
	return nil, fmt.Errorf("object %d not present in object stream", objNum)
}
