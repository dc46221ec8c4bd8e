// Package graphicsstate interprets content stream operations and
// collects the vector paths a viewer would stroke.
//
// The interpreter tracks the graphics state the way a renderer does:
// a current transformation matrix modified by cm and scoped by q/Q,
// a stroke color fed by RG, G, K, SC, and SCN, and a line width set
// by w. Path construction operators (m, l, h, re, and the curve
// operators) build the current path in user space; every coordinate is
// mapped through the CTM and flipped into top-left-origin page space as
// it arrives.
//
// Stroking operators (S, s, B, B*, b, b*) emit the current path with
// the stroke color and width in effect; f, F, f*, and n discard it.
// Text and image operators are ignored.
//
//	px := graphicsstate.NewPathExtractor(pageHeight)
//	paths, err := px.ExtractFromBytes(content)
package graphicsstate
