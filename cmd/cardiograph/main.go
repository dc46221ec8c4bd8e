// Command cardiograph converts a vector-graphics ECG printout (PDF)
// into an EDF+ biosignal file.
//
// Usage:
//
//	cardiograph -in report.pdf [-out report.edf] [-page 2] [-rate 300] [-cal 28.346]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tsawler/cardiograph"
)

func main() {
	var (
		in      = flag.String("in", "", "input PDF report (required)")
		out     = flag.String("out", "", "output EDF+ file (default: input with .edf extension)")
		page    = flag.Int("page", 2, "1-indexed page holding the trace")
		rate    = flag.Int("rate", 300, "sample rate in Hz written to the EDF+ headers")
		cal     = flag.Float64("cal", 28.346, "vertical calibration in PDF points per millivolt")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *in == "" {
		fmt.Fprintln(os.Stderr, "cardiograph: -in is required")
		flag.Usage()
		os.Exit(2)
	}
	target := *out
	if target == "" {
		target = strings.TrimSuffix(*in, ".pdf") + ".edf"
	}

	logger.Info("converting", "in", *in, "out", target, "page", *page)

	summary, warnings, err := cardiograph.Open(*in).
		Page(*page).
		SampleRate(*rate).
		Calibration(*cal).
		Convert(target)
	if err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}

	for _, w := range warnings {
		logger.Warn(w.Message, "row", w.Row)
	}
	for i, row := range summary.Rows {
		logger.Debug("row", "index", i, "points", row.Points,
			"min_x", row.MinX, "max_x", row.MaxX)
	}

	logger.Info("conversion complete",
		"samples", summary.Samples,
		"duration_sec", fmt.Sprintf("%.2f", summary.Duration),
		"rate_hz", *rate,
		"min_mv", fmt.Sprintf("%.3f", summary.MinMV),
		"max_mv", fmt.Sprintf("%.3f", summary.MaxMV),
	)

	if info, err := os.Stat(target); err == nil {
		logger.Info("edf file written", "path", target, "bytes", info.Size())
	}
}
