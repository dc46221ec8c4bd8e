package ecg

import (
	"errors"
	"math"

	"github.com/tsawler/cardiograph/graphicsstate"
)

// ErrBaselinesNotFound reports that no path on the page carried the
// grid-ruling fingerprint with enough qualifying horizontal rules.
var ErrBaselinesNotFound = errors.New("baseline rulings not found")

// matchesPenStyle reports whether a path is drawn with the report's
// pen: exactly black, with a stroke width inside the open hairline
// band. Both the grid and the trace share this style; segment density
// tells them apart.
func matchesPenStyle(p graphicsstate.DrawingPath, layout Layout) bool {
	if p.Color != [3]float64{0, 0, 0} {
		return false
	}
	return p.Width > layout.TraceWidthMin && p.Width < layout.TraceWidthMax
}

// DetectBaselines scans paths in paint order for the grid layer and
// returns the y-coordinates of the first RowCount rulings, in discovery
// order. The first path that yields enough rulings wins.
func DetectBaselines(paths []graphicsstate.DrawingPath, layout Layout) ([]float64, error) {
	for _, p := range paths {
		if !matchesPenStyle(p, layout) || len(p.Segments) < layout.BaselineMinSegments {
			continue
		}

		var rulings []float64
		for i, seg := range p.Segments {
			if !p.Horizontal(i, layout.HorizontalTolerance) {
				continue
			}
			if math.Abs(seg.End.X-seg.Start.X) <= layout.BaselineMinSpan {
				continue
			}
			if seg.Start.Y >= layout.VisibleYLimit {
				continue
			}
			rulings = append(rulings, seg.Start.Y)
		}

		if len(rulings) >= layout.RowCount {
			return rulings[:layout.RowCount], nil
		}
	}
	return nil, ErrBaselinesNotFound
}
