package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode decompresses Flate (zlib/deflate) compressed data, the most
// common filter on content streams. When the Predictor parameter is present
// and not 1, the matching de-prediction pass is applied to the inflated
// bytes.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	predictor := params.Int("Predictor", 1)
	if predictor == 1 {
		return buf.Bytes(), nil
	}

	out, err := undoPredictor(buf.Bytes(), predictor, params)
	if err != nil {
		return nil, fmt.Errorf("predictor %d: %w", predictor, err)
	}
	return out, nil
}

// undoPredictor reverses the prediction pass applied before compression.
// Predictor 2 is TIFF horizontal differencing; 10-15 are the PNG row
// filters, selected per row by a leading tag byte.
func undoPredictor(data []byte, predictor int, params Params) ([]byte, error) {
	columns := params.Int("Columns", 1)
	colors := params.Int("Colors", 1)
	bpc := params.Int("BitsPerComponent", 8)

	if bpc != 8 {
		return nil, fmt.Errorf("unsupported BitsPerComponent %d", bpc)
	}

	switch {
	case predictor == 2:
		return undoTIFFPredictor(data, columns, colors)
	case predictor >= 10 && predictor <= 15:
		return undoPNGPredictor(data, columns, colors)
	}
	return nil, fmt.Errorf("unsupported predictor value")
}

func undoTIFFPredictor(data []byte, columns, colors int) ([]byte, error) {
	rowSize := columns * colors
	if rowSize == 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data length %d not a multiple of row size %d", len(data), rowSize)
	}

	out := make([]byte, len(data))
	for rowStart := 0; rowStart < len(data); rowStart += rowSize {
		for i := 0; i < rowSize; i++ {
			if i < colors {
				out[rowStart+i] = data[rowStart+i]
			} else {
				out[rowStart+i] = data[rowStart+i] + out[rowStart+i-colors]
			}
		}
	}
	return out, nil
}

func undoPNGPredictor(data []byte, columns, colors int) ([]byte, error) {
	rowSize := columns * colors
	if rowSize == 0 || len(data)%(rowSize+1) != 0 {
		return nil, fmt.Errorf("data length %d not a multiple of tagged row size %d", len(data), rowSize+1)
	}

	numRows := len(data) / (rowSize + 1)
	out := make([]byte, 0, numRows*rowSize)
	prev := make([]byte, rowSize) // zero row above the first

	for row := 0; row < numRows; row++ {
		tag := data[row*(rowSize+1)]
		src := data[row*(rowSize+1)+1 : (row+1)*(rowSize+1)]
		cur := make([]byte, rowSize)

		for i := 0; i < rowSize; i++ {
			var left, up, upLeft byte
			if i >= colors {
				left = cur[i-colors]
				upLeft = prev[i-colors]
			}
			up = prev[i]

			var predicted byte
			switch tag {
			case 0: // None
			case 1: // Sub
				predicted = left
			case 2: // Up
				predicted = up
			case 3: // Average
				predicted = byte((int(left) + int(up)) / 2)
			case 4: // Paeth
				predicted = paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG row filter %d", tag)
			}
			cur[i] = src[i] + predicted
		}

		out = append(out, cur...)
		prev = cur
	}
	return out, nil
}

// paeth selects the neighbor closest to the linear prediction left+up-upLeft,
// as defined by the PNG specification.
func paeth(left, up, upLeft byte) byte {
	p := int(left) + int(up) - int(upLeft)
	pa := abs(p - int(left))
	pb := abs(p - int(up))
	pc := abs(p - int(upLeft))
	if pa <= pb && pa <= pc {
		return left
	}
	if pb <= pc {
		return up
	}
	return upLeft
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
