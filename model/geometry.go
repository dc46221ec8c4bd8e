package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Near reports whether both coordinates are within tolerance of the other
// point. The interpreter and the row reconstructor use this to detect shared
// segment endpoints.
func (p Point) Near(other Point, tolerance float64) bool {
	return math.Abs(p.X-other.X) <= tolerance && math.Abs(p.Y-other.Y) <= tolerance
}

// Matrix represents a 2D affine transformation matrix in the PDF
// [a b c d e f] form:
//
//	| a b 0 |
//	| c d 0 |
//	| e f 1 |
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Concat returns the product m × other with other applied first. This is the
// composition performed by the cm operator: the operand matrix is
// right-multiplied onto the CTM, so transforms concatenated inside nested
// save/restore scopes chain associatively.
func (m Matrix) Concat(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// ToPageSpace maps a user-space point through the matrix and then flips the
// vertical axis using the page height, producing top-left-origin page
// coordinates. The flip happens exactly once, after the full CTM has been
// applied.
func (m Matrix) ToPageSpace(p Point, pageHeight float64) Point {
	t := m.Transform(p)
	return Point{X: t.X, Y: pageHeight - t.Y}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a rotation matrix (angle in radians)
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0
}
