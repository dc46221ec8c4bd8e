package ecg

import (
	"math"
	"sort"

	"github.com/tsawler/cardiograph/graphicsstate"
	"github.com/tsawler/cardiograph/model"
)

// Rows maps each row index to that row's trace points ordered by x.
// Every index in [0, RowCount) is always present, possibly empty.
type Rows map[int][]model.Point

// ReconstructRows classifies trace paths into rows. A path qualifies
// when it carries the report's pen style and at least RowMinSegments
// segments; it joins the row whose baseline is nearest to the path's
// mean y, unless that distance exceeds RowAssignCutoff, in which case
// the path is dropped as unrelated ink. A qualifying path is assigned
// wholly to one row, even if its ink visually straddles two.
func ReconstructRows(paths []graphicsstate.DrawingPath, baselines []float64, layout Layout) Rows {
	rows := make(Rows, layout.RowCount)
	for i := 0; i < layout.RowCount; i++ {
		rows[i] = nil
	}

	for _, p := range paths {
		if !matchesPenStyle(p, layout) || len(p.Segments) < layout.RowMinSegments {
			continue
		}

		points := walkPoints(p, layout.PointTolerance)
		if len(points) == 0 {
			continue
		}

		row, dist := nearestBaseline(meanY(points), baselines)
		if row < 0 || dist >= layout.RowAssignCutoff {
			continue
		}
		rows[row] = append(rows[row], points...)
	}

	for i := range rows {
		points := rows[i]
		sort.SliceStable(points, func(a, b int) bool {
			return points[a].X < points[b].X
		})
	}
	return rows
}

// walkPoints flattens a path's segments into an ordered point sequence.
// Adjacent segments normally share an endpoint, so a segment's start is
// appended only when it differs from the previously appended point;
// every end point is appended unconditionally.
func walkPoints(p graphicsstate.DrawingPath, tolerance float64) []model.Point {
	points := make([]model.Point, 0, len(p.Segments)+1)
	for _, seg := range p.Segments {
		if len(points) == 0 || !seg.Start.Near(points[len(points)-1], tolerance) {
			points = append(points, seg.Start)
		}
		points = append(points, seg.End)
	}
	return points
}

func meanY(points []model.Point) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Y
	}
	return sum / float64(len(points))
}

// nearestBaseline returns the index of the baseline closest to y and
// the distance to it, or (-1, 0) when there are no baselines.
func nearestBaseline(y float64, baselines []float64) (int, float64) {
	best := -1
	bestDist := math.MaxFloat64
	for i, b := range baselines {
		if d := math.Abs(y - b); d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestDist
}
