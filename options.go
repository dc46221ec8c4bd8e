package cardiograph

import (
	"github.com/tsawler/cardiograph/ecg"
	"github.com/tsawler/cardiograph/edf"
)

// ConvertOptions holds configuration for a conversion run.
type ConvertOptions struct {
	// Page selection (1-indexed in API, stored as-is). KardiaMobile
	// reports carry the trace on page 2.
	page int

	// Signal reconstruction thresholds.
	layout ecg.Layout

	// EDF+ recording metadata, including the sample rate.
	recording edf.RecordingInfo
}

// defaultOptions returns the default conversion options.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		page:      2,
		layout:    ecg.DefaultLayout(),
		recording: edf.DefaultRecordingInfo(),
	}
}

// clone creates a copy of ConvertOptions. Both nested structs are plain
// value types, so a shallow copy is a deep copy.
func (o ConvertOptions) clone() ConvertOptions {
	return ConvertOptions{
		page:      o.page,
		layout:    o.layout,
		recording: o.recording,
	}
}
