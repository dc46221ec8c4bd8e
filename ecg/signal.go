package ecg

import (
	"errors"
	"fmt"

	"github.com/tsawler/cardiograph/model"
)

// ErrIncompleteRowSet reports a row index missing from the row mapping.
// ReconstructRows always initializes every index, so hitting this means
// a caller broke the contract.
var ErrIncompleteRowSet = errors.New("row set is missing an index")

// BuildSignal converts the rows into one time-ordered voltage sequence
// in millivolts, row by row. Empty rows contribute nothing and are
// reported in skipped; consecutive points closer than the dedupe
// tolerance on x collapse to the first of the run.
func BuildSignal(rows Rows, baselines []float64, layout Layout) (signal []float64, skipped []int, err error) {
	if len(baselines) < layout.RowCount {
		return nil, nil, fmt.Errorf("%d baselines for %d rows", len(baselines), layout.RowCount)
	}

	for i := 0; i < layout.RowCount; i++ {
		points, ok := rows[i]
		if !ok {
			return nil, nil, fmt.Errorf("%w: row %d", ErrIncompleteRowSet, i)
		}
		if len(points) == 0 {
			skipped = append(skipped, i)
			continue
		}
		for _, p := range dedupe(points, layout.DedupeTolerance) {
			signal = append(signal, (baselines[i]-p.Y)/layout.Calibration)
		}
	}
	return signal, skipped, nil
}

// dedupe drops consecutive points whose x differs from the previous
// kept point by no more than tolerance, keeping the first of each run.
func dedupe(points []model.Point, tolerance float64) []model.Point {
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 {
			d := p.X - out[len(out)-1].X
			if d < 0 {
				d = -d
			}
			if d <= tolerance {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Summary describes a reconstructed signal.
type Summary struct {
	Samples  int
	MinMV    float64
	MaxMV    float64
	MeanMV   float64
	Duration float64 // seconds at the given sample rate
}

// Summarize computes basic statistics over a signal sampled at
// sampleRate Hz. An empty signal yields a zero Summary.
func Summarize(signal []float64, sampleRate float64) Summary {
	if len(signal) == 0 {
		return Summary{}
	}
	s := Summary{
		Samples: len(signal),
		MinMV:   signal[0],
		MaxMV:   signal[0],
	}
	var sum float64
	for _, v := range signal {
		if v < s.MinMV {
			s.MinMV = v
		}
		if v > s.MaxMV {
			s.MaxMV = v
		}
		sum += v
	}
	s.MeanMV = sum / float64(len(signal))
	if sampleRate > 0 {
		s.Duration = float64(len(signal)) / sampleRate
	}
	return s
}
