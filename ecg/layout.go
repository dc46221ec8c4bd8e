package ecg

// Layout carries the geometric constants of the printed report. The
// values describe one known layout; they are configuration, not
// discovery.
type Layout struct {
	// RowCount is the number of trace rows (and baselines) per page.
	RowCount int

	// TraceWidthMin and TraceWidthMax bound the stroke width of grid
	// rulings and trace ink as an open interval: both baselines and the
	// trace are drawn with a 0.4-unit pen.
	TraceWidthMin float64
	TraceWidthMax float64

	// BaselineMinSegments is the minimum segment count for a path to be
	// considered as the grid layer.
	BaselineMinSegments int

	// BaselineMinSpan is the minimum x-extent of a horizontal segment
	// for it to count as a full-row ruling rather than a short tick.
	BaselineMinSpan float64

	// HorizontalTolerance is the maximum endpoint y-difference of a
	// strictly horizontal segment.
	HorizontalTolerance float64

	// VisibleYLimit excludes rulings below the printable band, such as
	// footer separators.
	VisibleYLimit float64

	// RowMinSegments separates the trace from the grid: the trace is
	// plotted as many short segments, rulings as a handful of long ones.
	RowMinSegments int

	// RowAssignCutoff is the maximum distance between a path's mean y
	// and the nearest baseline for the path to join that row.
	RowAssignCutoff float64

	// PointTolerance is the per-axis tolerance under which two points
	// count as the same position when walking segments.
	PointTolerance float64

	// DedupeTolerance collapses consecutive points whose x-coordinates
	// differ by no more than this much.
	DedupeTolerance float64

	// Calibration is the vertical scale of the plot in page units per
	// millivolt.
	Calibration float64
}

// DefaultLayout returns the layout of the KardiaMobile single-lead
// report: four rows on a US Letter page at 10 mm/mV.
func DefaultLayout() Layout {
	return Layout{
		RowCount:            4,
		TraceWidthMin:       0.35,
		TraceWidthMax:       0.45,
		BaselineMinSegments: 4,
		BaselineMinSpan:     500,
		HorizontalTolerance: 0.01,
		VisibleYLimit:       760,
		RowMinSegments:      40,
		RowAssignCutoff:     80,
		PointTolerance:      0.001,
		DedupeTolerance:     0.01,
		Calibration:         28.346,
	}
}
