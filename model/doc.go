// Package model provides the geometric primitives shared by the PDF
// interpretation and signal reconstruction stages.
//
// # Geometry
//
//   - [Point] - 2D point with distance calculation
//   - [Matrix] - 2D affine transformation matrix (PDF [a b c d e f] form)
//
// # Coordinate spaces
//
// PDF user space has its origin at the bottom-left of the page with y
// increasing upward. The reconstruction stages work in page space: origin
// at the top-left, y increasing downward (so a lower point on the page has
// a larger y). [Matrix.ToPageSpace] performs the conversion: it applies the
// full current transformation matrix and then flips the vertical axis once
// using the page height.
package model
