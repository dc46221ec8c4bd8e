package filters

import (
	"bytes"
	"encoding/ascii85"
	"fmt"
	"io"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data. Each pair of hex
// digits produces one byte; whitespace is ignored and '>' ends the data.
// An odd trailing digit is treated as if followed by '0'.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	var hi byte
	havePending := false

	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, err := hexDigit(c)
		if err != nil {
			return nil, err
		}
		if havePending {
			out.WriteByte(hi<<4 | v)
			havePending = false
		} else {
			hi = v
			havePending = true
		}
	}
	if havePending {
		out.WriteByte(hi << 4)
	}
	return out.Bytes(), nil
}

// ASCII85Decode decodes base-85 encoded data. The optional "<~" prefix and
// the "~>" end-of-data marker are stripped before decoding.
func ASCII85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimLeft(data, " \t\r\n\f\x00")
	data = bytes.TrimPrefix(data, []byte("<~"))
	if idx := bytes.Index(data, []byte("~>")); idx >= 0 {
		data = data[:idx]
	}

	dec := ascii85.NewDecoder(bytes.NewReader(data))
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("ascii85: %w", err)
	}
	return out, nil
}

// RunLengthDecode decodes PDF run-length encoded data. A length byte L is
// followed either by L+1 literal bytes (L < 128) or one byte repeated
// 257-L times (L > 128). The byte 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer

	i := 0
	for i < len(data) {
		l := data[i]
		i++
		switch {
		case l == 128:
			return out.Bytes(), nil
		case l < 128:
			n := int(l) + 1
			if i+n > len(data) {
				return nil, fmt.Errorf("truncated literal run at offset %d", i)
			}
			out.Write(data[i : i+n])
			i += n
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("truncated repeat run at offset %d", i)
			}
			n := 257 - int(l)
			for j := 0; j < n; j++ {
				out.WriteByte(data[i])
			}
			i++
		}
	}
	return out.Bytes(), nil
}

func hexDigit(c byte) (byte, error) {
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

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
