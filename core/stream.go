package core

import (
	"fmt"

	"github.com/tsawler/cardiograph/internal/filters"
)

// Decode applies the stream's /Filter chain to its raw data. Multiple
// filters are applied in array order. Unknown filters are an error;
// DCTDecode and JPXDecode pass through raw, since their output is an
// encoded image consumed as-is downstream.
func (s *Stream) Decode() ([]byte, error) {
	data := s.Data

	for i, name := range s.filterNames() {
		params := s.filterParams(i)

		var err error
		switch name {
		case "FlateDecode", "Fl":
			data, err = filters.FlateDecode(data, params)
		case "ASCIIHexDecode", "AHx":
			data, err = filters.ASCIIHexDecode(data)
		case "ASCII85Decode", "A85":
			data, err = filters.ASCII85Decode(data)
		case "RunLengthDecode", "RL":
			data, err = filters.RunLengthDecode(data)
		case "CCITTFaxDecode", "CCF":
			data, err = filters.CCITTFaxDecode(data, params)
		case "DCTDecode", "DCT", "JPXDecode":
			// Compressed image data, handed off undecoded.
		default:
			return nil, fmt.Errorf("unsupported stream filter /%s", name)
		}
		if err != nil {
			return nil, fmt.Errorf("filter /%s: %w", name, err)
		}
	}

	return data, nil
}

// filterNames normalizes /Filter, which may be a single name or an array.
func (s *Stream) filterNames() []Name {
	switch f := s.Dict.Get("Filter").(type) {
	case Name:
		return []Name{f}
	case Array:
		names := make([]Name, 0, len(f))
		for _, obj := range f {
			if name, ok := obj.(Name); ok {
				names = append(names, name)
			}
		}
		return names
	}
	return nil
}

// filterParams returns the decode parameters for the i-th filter.
// /DecodeParms mirrors /Filter: a single dict or an array of dicts,
// with null entries for filters that take no parameters.
func (s *Stream) filterParams(i int) filters.Params {
	var dict Dict
	switch p := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		if i == 0 {
			dict = p
		}
	case Array:
		if i < len(p) {
			dict, _ = p[i].(Dict)
		}
	}
	if dict == nil {
		return nil
	}

	params := make(filters.Params, len(dict))
	for key, val := range dict {
		switch v := val.(type) {
		case Int:
			params[key] = int(v)
		case Real:
			params[key] = float64(v)
		case Bool:
			params[key] = bool(v)
		}
	}
	return params
}
