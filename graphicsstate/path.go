package graphicsstate

import "github.com/tsawler/cardiograph/model"

// closePointTolerance is how close (per axis) the current point must be
// to the subpath start for h to skip the closing segment.
const closePointTolerance = 0.001

// Segment is one straight stroke between two points in page space.
type Segment struct {
	Start model.Point
	End   model.Point
}

// DrawingPath is a stroked path: the segments of all its subpaths plus
// the stroke color and line width in effect when it was painted.
type DrawingPath struct {
	Segments []Segment
	Color    [3]float64 // RGB, each component in [0,1]
	Width    float64
}

// Horizontal reports whether the segment at index i runs horizontally
// within tolerance.
func (p DrawingPath) Horizontal(i int, tolerance float64) bool {
	s := p.Segments[i]
	d := s.Start.Y - s.End.Y
	if d < 0 {
		d = -d
	}
	return d < tolerance
}

// pathBuilder accumulates stroke segments between painting operators,
// tracking the current point and the start of the current subpath.
// Points arrive already mapped to page space.
type pathBuilder struct {
	segments []Segment
	current  model.Point
	start    model.Point
}

// MoveTo starts a new subpath at p.
func (b *pathBuilder) MoveTo(p model.Point) {
	b.current = p
	b.start = p
}

// LineTo strokes from the current point to p. A stray l without a
// preceding m strokes from the origin, matching lenient viewer behavior.
func (b *pathBuilder) LineTo(p model.Point) {
	b.segments = append(b.segments, Segment{Start: b.current, End: p})
	b.current = p
}

// Close strokes back to the subpath start (h operator) and makes it the
// current point, so a following l continues from there. A path that
// already returned to its start (within the tolerance per axis) gains
// no degenerate segment.
func (b *pathBuilder) Close() {
	if b.current.Near(b.start, closePointTolerance) {
		return
	}
	b.segments = append(b.segments, Segment{Start: b.current, End: b.start})
	b.current = b.start
}

// Rect appends a closed rectangular subpath (re operator) from its four
// corners in bottom-left, bottom-right, top-right, top-left order. The
// first corner becomes the current point and subpath start.
func (b *pathBuilder) Rect(bl, br, tr, tl model.Point) {
	b.segments = append(b.segments,
		Segment{Start: bl, End: br},
		Segment{Start: br, End: tr},
		Segment{Start: tr, End: tl},
		Segment{Start: tl, End: bl},
	)
	b.current = bl
	b.start = bl
}

// Empty reports whether no segment has been built.
func (b *pathBuilder) Empty() bool {
	return len(b.segments) == 0
}

// Segments returns a copy of the accumulated segments.
func (b *pathBuilder) Segments() []Segment {
	segs := make([]Segment, len(b.segments))
	copy(segs, b.segments)
	return segs
}

// Reset discards the accumulated segments. The current point is kept;
// painting operators do not move it.
func (b *pathBuilder) Reset() {
	b.segments = b.segments[:0]
}
