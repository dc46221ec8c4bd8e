// Package filters implements the PDF stream decompression filters the
// reader needs to reach page content and embedded scan images.
//
// Supported filters:
//
//   - FlateDecode (zlib/deflate, with TIFF and PNG predictors)
//   - ASCIIHexDecode
//   - ASCII85Decode
//   - RunLengthDecode
//   - CCITTFaxDecode (Group 3/4 bi-level fax, for scanned printouts)
//
// Filters that take decode parameters receive them as a Params map holding
// Go primitive values translated from the stream dictionary:
//
//	params := filters.Params{
//	    "Predictor": 12,
//	    "Columns":   100,
//	}
//	decoded, err := filters.FlateDecode(data, params)
package filters
