// Package contentstream provides parsing of PDF content streams.
//
// Content streams contain the instructions for rendering page content:
// path construction, painting, graphics state changes, text, and images.
// The parser turns the stream into a flat sequence of operations:
//
//	parser := contentstream.NewParser(streamData)
//	ops, err := parser.Parse()
//	for _, op := range ops {
//	    fmt.Printf("Operator: %s, Operands: %v\n", op.Operator, op.Operands)
//	}
//
// # Operators relevant to waveform extraction
//
// Graphics state:
//   - q, Q - Save/restore graphics state
//   - cm - Modify CTM (current transformation matrix)
//   - w - Set line width
//   - RG, G, K, SC, SCN - Set stroke color
//
// Path construction and painting:
//   - m, l, h, re - Move to, line to, close, rectangle
//   - S, s, B, B*, b, b* - Stroke (and fill-and-stroke) paths
//   - f, F, f*, n - Fill or discard paths without stroking
//
// All other operators (text, shading, markers) are parsed and passed
// through so the interpreter can ignore them explicitly.
//
// # Operand types
//
// Operands can be any PDF object type: numbers (core.Int, core.Real),
// strings, names, arrays, and dictionaries.
package contentstream
