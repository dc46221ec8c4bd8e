package graphicsstate

import (
	"errors"
	"math"
	"testing"

	"github.com/tsawler/cardiograph/model"
)

const pageHeight = 792.0

func extract(t *testing.T, content string) []DrawingPath {
	t.Helper()
	paths, err := NewPathExtractor(pageHeight).ExtractFromBytes([]byte(content))
	if err != nil {
		t.Fatalf("ExtractFromBytes(%q) failed: %v", content, err)
	}
	return paths
}

func near(a, b model.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestExtractSimpleStroke(t *testing.T) {
	paths := extract(t, "0.4 w 0 0 0 RG 100 700 m 200 700 l S")

	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	p := paths[0]
	if p.Width != 0.4 {
		t.Errorf("Width = %v, want 0.4", p.Width)
	}
	if p.Color != [3]float64{0, 0, 0} {
		t.Errorf("Color = %v, want black", p.Color)
	}
	if len(p.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(p.Segments))
	}
	// y is flipped: 792 - 700 = 92.
	if !near(p.Segments[0].Start, model.Point{X: 100, Y: 92}) {
		t.Errorf("Start = %+v, want (100, 92)", p.Segments[0].Start)
	}
	if !near(p.Segments[0].End, model.Point{X: 200, Y: 92}) {
		t.Errorf("End = %+v, want (200, 92)", p.Segments[0].End)
	}
}

func TestExtractCTMApplied(t *testing.T) {
	// Translate by (50, 100): user point (10, 20) lands at (60, 120),
	// then flips to y = 792 - 120 = 672.
	paths := extract(t, "1 0 0 1 50 100 cm 10 20 m 30 20 l S")
	start := paths[0].Segments[0].Start
	if !near(start, model.Point{X: 60, Y: 672}) {
		t.Errorf("Start = %+v, want (60, 672)", start)
	}
}

func TestExtractNestedSaveRestore(t *testing.T) {
	content := `
q
2 0 0 2 0 0 cm
10 10 m 20 10 l S
Q
10 10 m 20 10 l S
`
	paths := extract(t, content)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	scaled := paths[0].Segments[0].Start
	if !near(scaled, model.Point{X: 20, Y: 792 - 20}) {
		t.Errorf("scaled Start = %+v, want (20, 772)", scaled)
	}
	unscaled := paths[1].Segments[0].Start
	if !near(unscaled, model.Point{X: 10, Y: 792 - 10}) {
		t.Errorf("restored Start = %+v, want (10, 782)", unscaled)
	}
}

func TestExtractRestoreOnEmptyStackIsNoOp(t *testing.T) {
	paths := extract(t, "Q Q 1 1 m 2 1 l S")
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
}

func TestExtractStrokeStateCapturedPerPath(t *testing.T) {
	content := "0.4 w 0 0 0 RG 1 1 m 2 1 l S 2 w 1 0 0 RG 3 3 m 4 3 l S"
	paths := extract(t, content)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	if paths[0].Width != 0.4 || paths[0].Color != [3]float64{0, 0, 0} {
		t.Errorf("first path state = %v/%v", paths[0].Width, paths[0].Color)
	}
	if paths[1].Width != 2 || paths[1].Color != [3]float64{1, 0, 0} {
		t.Errorf("second path state = %v/%v", paths[1].Width, paths[1].Color)
	}
}

func TestExtractColorOperators(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    [3]float64
	}{
		{"gray", "0.5 G 1 1 m 2 1 l S", [3]float64{0.5, 0.5, 0.5}},
		{"cmyk black", "0 0 0 1 K 1 1 m 2 1 l S", [3]float64{0, 0, 0}},
		{"sc gray", "0.25 SC 1 1 m 2 1 l S", [3]float64{0.25, 0.25, 0.25}},
		{"scn rgb", "0 1 0 SCN 1 1 m 2 1 l S", [3]float64{0, 1, 0}},
		{"scn cmyk", "1 0 0 0 SCN 1 1 m 2 1 l S", [3]float64{0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := extract(t, tt.content)
			if paths[0].Color != tt.want {
				t.Errorf("Color = %v, want %v", paths[0].Color, tt.want)
			}
		})
	}
}

func TestExtractSCNWrongArityIgnored(t *testing.T) {
	// Two components suggest a separation space; the stroke color is
	// left alone.
	paths := extract(t, "0.5 G 1 2 SCN 1 1 m 2 1 l S")
	if paths[0].Color != [3]float64{0.5, 0.5, 0.5} {
		t.Errorf("Color = %v, want the earlier gray to survive", paths[0].Color)
	}
}

func TestExtractRectangle(t *testing.T) {
	paths := extract(t, "10 20 100 50 re S")
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	segs := paths[0].Segments
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	// Corners in page space: bottom-left of the rect is (10,20) in user
	// space, which flips to y = 772.
	if !near(segs[0].Start, model.Point{X: 10, Y: 772}) {
		t.Errorf("first corner = %+v", segs[0].Start)
	}
	if !near(segs[1].Start, model.Point{X: 110, Y: 772}) {
		t.Errorf("second corner = %+v", segs[1].Start)
	}
	if !near(segs[2].Start, model.Point{X: 110, Y: 722}) {
		t.Errorf("third corner = %+v", segs[2].Start)
	}
}

func TestExtractFillDiscardsPath(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"fill", "1 1 m 2 1 l 2 2 l f"},
		{"fill F", "1 1 m 2 1 l 2 2 l F"},
		{"fill even-odd", "1 1 m 2 1 l 2 2 l f*"},
		{"no-op", "1 1 m 2 1 l n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if paths := extract(t, tt.content); len(paths) != 0 {
				t.Errorf("got %d paths, want 0", len(paths))
			}
		})
	}
}

func TestExtractFillAndStrokeEmits(t *testing.T) {
	// Only the close-stroke operator s adds a closing segment; the
	// fill-and-stroke variants emit the segments exactly as built.
	tests := []struct {
		op   string
		segs int
	}{
		{"B", 2},
		{"B*", 2},
		{"b", 2},
		{"b*", 2},
		{"s", 3},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			paths := extract(t, "1 1 m 2 1 l 2 2 l "+tt.op)
			if len(paths) != 1 {
				t.Fatalf("got %d paths, want 1", len(paths))
			}
			if got := len(paths[0].Segments); got != tt.segs {
				t.Errorf("got %d segments, want %d", got, tt.segs)
			}
		})
	}
}

func TestExtractClosedStrokeAddsClosingSegment(t *testing.T) {
	paths := extract(t, "0 0 m 10 0 l 10 10 l s")
	segs := paths[0].Segments
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if !near(segs[2].End, model.Point{X: 0, Y: 792}) {
		t.Errorf("closing segment ends at %+v", segs[2].End)
	}
}

func TestExtractTwoPointClose(t *testing.T) {
	// Even a two-point subpath strokes its closing segment.
	paths := extract(t, "0 0 m 10 0 l h S")
	segs := paths[0].Segments
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if !near(segs[1].Start, model.Point{X: 10, Y: 792}) || !near(segs[1].End, model.Point{X: 0, Y: 792}) {
		t.Errorf("closing segment = %+v", segs[1])
	}
}

func TestExtractLineAfterClose(t *testing.T) {
	// h moves the current point back to the subpath start, so a
	// following l strokes from there.
	paths := extract(t, "0 0 m 10 0 l 10 10 l h 20 20 l S")
	segs := paths[0].Segments
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	if !near(segs[3].Start, model.Point{X: 0, Y: 792}) {
		t.Errorf("segment after close starts at %+v, want the subpath start", segs[3].Start)
	}
	if !near(segs[3].End, model.Point{X: 20, Y: 772}) {
		t.Errorf("segment after close ends at %+v", segs[3].End)
	}
}

func TestExtractCurveFlattenedToEndpoint(t *testing.T) {
	paths := extract(t, "0 0 m 1 5 9 5 10 0 c S")
	segs := paths[0].Segments
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if !near(segs[0].End, model.Point{X: 10, Y: 792}) {
		t.Errorf("curve endpoint = %+v", segs[0].End)
	}
}

func TestExtractEmptyStrokeEmitsNothing(t *testing.T) {
	if paths := extract(t, "1 1 m S S"); len(paths) != 0 {
		t.Errorf("got %d paths, want 0 for a pathless stroke", len(paths))
	}
}

func TestExtractTextIgnored(t *testing.T) {
	paths := extract(t, "BT /F1 10 Tf (ignored) Tj ET 1 1 m 2 1 l S")
	if len(paths) != 1 {
		t.Errorf("got %d paths, want 1", len(paths))
	}
}

func TestExtractWrongOperandCountIgnored(t *testing.T) {
	// An operator with the wrong operand count is skipped without
	// touching state; here the short cm leaves the CTM at identity.
	paths := extract(t, "1 0 0 1 5 cm 10 10 m 20 10 l S")
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	start := paths[0].Segments[0].Start
	if !near(start, model.Point{X: 10, Y: 782}) {
		t.Errorf("Start = %+v, want the untranslated (10, 782)", start)
	}
}

func TestExtractMalformedOperand(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"name as coordinate", "/Bad 1 m 2 1 l S"},
		{"string width", "(x) w"},
		{"pattern name scn", "/P0 SCN 1 1 m 2 1 l S"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPathExtractor(pageHeight).ExtractFromBytes([]byte(tt.content))
			if !errors.Is(err, ErrMalformedOperand) {
				t.Errorf("err = %v, want ErrMalformedOperand", err)
			}
		})
	}
}
