package filters

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes CCITT Group 3/4 fax compressed data, the usual
// encoding for bi-level scan images in faxed or scanned ECG printouts.
//
// Recognized decode parameters:
//   - K: group selector (< 0 selects Group 4, otherwise Group 3)
//   - Columns: image width in pixels (default 1728)
//   - Rows: image height in pixels (0 auto-detects)
//   - BlackIs1: bit sense (maps to ccitt.Options.Invert)
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := params.Int("Columns", 1728)
	rows := params.Int("Rows", 0)
	k := params.Int("K", 0)
	blackIs1 := params.Bool("BlackIs1", false)

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows,
		&ccitt.Options{Invert: blackIs1})
	return io.ReadAll(r)
}
