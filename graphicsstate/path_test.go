package graphicsstate

import (
	"testing"

	"github.com/tsawler/cardiograph/model"
)

func pt(x, y float64) model.Point {
	return model.Point{X: x, Y: y}
}

func TestBuilderPolyline(t *testing.T) {
	var b pathBuilder
	b.MoveTo(pt(0, 0))
	b.LineTo(pt(10, 0))
	b.LineTo(pt(10, 5))

	segs := b.Segments()
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0] != (Segment{pt(0, 0), pt(10, 0)}) {
		t.Errorf("segs[0] = %+v", segs[0])
	}
	if segs[1] != (Segment{pt(10, 0), pt(10, 5)}) {
		t.Errorf("segs[1] = %+v", segs[1])
	}
}

func TestBuilderMultipleSubpaths(t *testing.T) {
	var b pathBuilder
	b.MoveTo(pt(0, 0))
	b.LineTo(pt(1, 0))
	b.MoveTo(pt(5, 5))
	b.LineTo(pt(6, 5))

	segs := b.Segments()
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[1].Start != pt(5, 5) {
		t.Errorf("second subpath starts at %+v", segs[1].Start)
	}
}

func TestBuilderClose(t *testing.T) {
	var b pathBuilder
	b.MoveTo(pt(0, 0))
	b.LineTo(pt(10, 0))
	b.LineTo(pt(10, 10))
	b.Close()

	segs := b.Segments()
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3 including the closing one", len(segs))
	}
	closing := segs[2]
	if closing.Start != pt(10, 10) || closing.End != pt(0, 0) {
		t.Errorf("closing segment = %+v", closing)
	}
}

func TestBuilderCloseCoincidentEndpoint(t *testing.T) {
	// When the path already returned to its start (within 0.001 per
	// axis), closing must not add a degenerate segment.
	var b pathBuilder
	b.MoveTo(pt(0, 0))
	b.LineTo(pt(10, 0))
	b.LineTo(pt(10, 10))
	b.LineTo(pt(0.0005, 0.0008))
	b.Close()

	segs := b.Segments()
	if len(segs) != 3 {
		t.Errorf("got %d segments, want 3 without a closing duplicate", len(segs))
	}
}

func TestBuilderRect(t *testing.T) {
	var b pathBuilder
	b.Rect(pt(0, 10), pt(4, 10), pt(4, 7), pt(0, 7))

	segs := b.Segments()
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	// Closing segment returns from the fourth corner to the first.
	if segs[3].Start != pt(0, 7) || segs[3].End != pt(0, 10) {
		t.Errorf("closing segment = %+v", segs[3])
	}
}

func TestBuilderLineToWithoutMove(t *testing.T) {
	// A stray l strokes from the origin, the implicit current point.
	var b pathBuilder
	b.LineTo(pt(1, 1))
	b.LineTo(pt(2, 2))

	segs := b.Segments()
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0] != (Segment{pt(0, 0), pt(1, 1)}) {
		t.Errorf("segs[0] = %+v", segs[0])
	}
}

func TestBuilderCloseTwoPoints(t *testing.T) {
	var b pathBuilder
	b.MoveTo(pt(0, 0))
	b.LineTo(pt(10, 0))
	b.Close()

	segs := b.Segments()
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2 including the closing one", len(segs))
	}
	if segs[1] != (Segment{pt(10, 0), pt(0, 0)}) {
		t.Errorf("closing segment = %+v", segs[1])
	}
}

func TestBuilderLineAfterClose(t *testing.T) {
	var b pathBuilder
	b.MoveTo(pt(0, 0))
	b.LineTo(pt(10, 0))
	b.LineTo(pt(10, 10))
	b.Close()
	b.LineTo(pt(20, 20))

	segs := b.Segments()
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	if segs[3] != (Segment{pt(0, 0), pt(20, 20)}) {
		t.Errorf("segment after close = %+v, want one from the subpath start", segs[3])
	}
}

func TestBuilderLineAfterRect(t *testing.T) {
	var b pathBuilder
	b.Rect(pt(0, 10), pt(4, 10), pt(4, 7), pt(0, 7))
	b.LineTo(pt(9, 9))

	segs := b.Segments()
	if len(segs) != 5 {
		t.Fatalf("got %d segments, want 5", len(segs))
	}
	if segs[4] != (Segment{pt(0, 10), pt(9, 9)}) {
		t.Errorf("segment after rect = %+v, want one from its first corner", segs[4])
	}
}

func TestBuilderEmptyAndReset(t *testing.T) {
	var b pathBuilder
	if !b.Empty() {
		t.Error("fresh builder should be empty")
	}
	b.MoveTo(pt(0, 0))
	if !b.Empty() {
		t.Error("a lone move point is not strokeable")
	}
	b.LineTo(pt(1, 1))
	if b.Empty() {
		t.Error("builder with a segment should not be empty")
	}
	b.Reset()
	if !b.Empty() {
		t.Error("reset builder should be empty")
	}
}

func TestDrawingPathHorizontal(t *testing.T) {
	p := DrawingPath{Segments: []Segment{
		{pt(0, 100), pt(500, 100.005)},
		{pt(0, 100), pt(0, 200)},
	}}
	if !p.Horizontal(0, 0.01) {
		t.Error("segment 0 should be horizontal within 0.01")
	}
	if p.Horizontal(1, 0.01) {
		t.Error("segment 1 is vertical")
	}
}
