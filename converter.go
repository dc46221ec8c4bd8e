package cardiograph

import (
	"errors"
	"fmt"

	"github.com/tsawler/cardiograph/ecg"
	"github.com/tsawler/cardiograph/edf"
	"github.com/tsawler/cardiograph/graphicsstate"
	"github.com/tsawler/cardiograph/reader"
)

// ErrContentStream reports that the selected page's content stream
// could not be located or decoded.
var ErrContentStream = errors.New("page content stream unavailable")

// Summary describes a completed conversion.
type Summary struct {
	Samples  int
	Duration float64 // seconds at the configured sample rate
	MinMV    float64
	MaxMV    float64
	MeanMV   float64
	Rows     []RowSummary
}

// RowSummary describes one reconstructed row: how many points it
// contributed and the x-extent they cover. An empty row is all zeros.
type RowSummary struct {
	Points int
	MinX   float64
	MaxX   float64
}

// Converter provides a fluent interface for converting an ECG printout
// to EDF+. Each configuration method returns a new Converter instance,
// making it safe for concurrent use and allowing method chaining.
type Converter struct {
	// Source
	filename string
	reader   *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if reader has been opened

	// Configuration
	options ConvertOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// clone creates a shallow copy of the Converter with a deep copy of
// options. This ensures immutability: each chain method returns a new
// instance.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename:     c.filename,
		reader:       c.reader,
		ownsReader:   c.ownsReader,
		readerOpened: c.readerOpened,
		options:      c.options.clone(),
		err:          c.err,
		warnings:     append([]Warning(nil), c.warnings...),
	}
}

// ensureReader opens the reader if not already open.
func (c *Converter) ensureReader() error {
	if c.readerOpened {
		return nil
	}
	if c.filename == "" {
		return fmt.Errorf("no filename specified")
	}
	r, err := reader.Open(c.filename)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	c.reader = r
	c.ownsReader = true
	c.readerOpened = true
	return nil
}

// Close releases resources associated with the Converter.
// It is safe to call Close multiple times.
func (c *Converter) Close() error {
	if c.ownsReader && c.reader != nil {
		err := c.reader.Close()
		c.reader = nil
		c.ownsReader = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Page selects which page holds the trace (1-indexed). The default is
// page 2, where KardiaMobile reports print the waveform.
//
// Example:
//
//	cardiograph.Open("ecg.pdf").Page(3).Convert("ecg.edf")
func (c *Converter) Page(n int) *Converter {
	nc := c.clone()
	if n < 1 {
		if nc.err == nil {
			nc.err = fmt.Errorf("page %d out of range: pages are 1-indexed", n)
		}
		return nc
	}
	nc.options.page = n
	return nc
}

// Layout replaces the signal-reconstruction thresholds wholesale. Use
// this when the printout deviates from the default KardiaMobile layout.
//
// Example:
//
//	layout := ecg.DefaultLayout()
//	layout.RowCount = 6
//	cardiograph.Open("ecg.pdf").Layout(layout).Convert("ecg.edf")
func (c *Converter) Layout(layout ecg.Layout) *Converter {
	nc := c.clone()
	nc.options.layout = layout
	return nc
}

// Calibration sets the vertical scale in PDF points per millivolt.
// The default is 28.346 (10 mm per mV at 2.8346 points per mm).
func (c *Converter) Calibration(pointsPerMV float64) *Converter {
	nc := c.clone()
	if pointsPerMV <= 0 {
		if nc.err == nil {
			nc.err = fmt.Errorf("calibration %v must be positive", pointsPerMV)
		}
		return nc
	}
	nc.options.layout.Calibration = pointsPerMV
	return nc
}

// SampleRate sets the signal sample rate in Hz written to the EDF+
// headers. The default is 300, the KardiaMobile device rate.
func (c *Converter) SampleRate(hz int) *Converter {
	nc := c.clone()
	if hz <= 0 {
		if nc.err == nil {
			nc.err = fmt.Errorf("sample rate %d must be positive", hz)
		}
		return nc
	}
	nc.options.recording.SampleRate = hz
	return nc
}

// Recording replaces the EDF+ recording metadata (patient and
// recording identification, start time, channel descriptions).
func (c *Converter) Recording(info edf.RecordingInfo) *Converter {
	nc := c.clone()
	nc.options.recording = info
	return nc
}

// PageCount returns the number of pages in the document. The reader
// remains open so the call can be followed by a terminal operation.
func (c *Converter) PageCount() (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if err := c.ensureReader(); err != nil {
		return 0, err
	}
	return c.reader.PageCount()
}

// ============================================================================
// Terminal Operations (execute the pipeline and return results)
// ============================================================================

// Paths extracts the drawing paths from the configured page. This is a
// terminal operation that closes the underlying reader.
func (c *Converter) Paths() ([]graphicsstate.DrawingPath, []Warning, error) {
	if c.err != nil {
		return nil, c.warnings, c.err
	}
	defer c.Close()

	paths, err := c.extractPaths()
	if err != nil {
		return nil, c.warnings, err
	}
	return paths, c.warnings, nil
}

// Signal runs reconstruction and returns the recovered voltage
// sequence in millivolts. This is a terminal operation that closes the
// underlying reader.
func (c *Converter) Signal() ([]float64, []Warning, error) {
	if c.err != nil {
		return nil, c.warnings, c.err
	}
	defer c.Close()

	signal, _, err := c.reconstruct()
	if err != nil {
		return nil, c.warnings, err
	}
	return signal, c.warnings, nil
}

// Convert runs the full pipeline and writes the EDF+ file at outPath.
// This is a terminal operation that closes the underlying reader.
//
// Returns a conversion summary, any warnings encountered during
// processing, and an error if conversion failed. Warnings indicate
// non-fatal issues (e.g., a row with no recoverable ink) where
// conversion succeeded but the output may be incomplete.
func (c *Converter) Convert(outPath string) (Summary, []Warning, error) {
	if c.err != nil {
		return Summary{}, c.warnings, c.err
	}
	defer c.Close()

	signal, rows, err := c.reconstruct()
	if err != nil {
		return Summary{}, c.warnings, err
	}
	if err := edf.WriteFile(outPath, signal, c.options.recording); err != nil {
		return Summary{}, c.warnings, err
	}
	return c.summarize(signal, rows), c.warnings, nil
}

// extractPaths opens the document, decodes the configured page's
// content stream and interprets it into drawing paths.
func (c *Converter) extractPaths() ([]graphicsstate.DrawingPath, error) {
	if err := c.ensureReader(); err != nil {
		return nil, err
	}

	page, err := c.reader.GetPage(c.options.page - 1)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", c.options.page, err)
	}

	data, err := page.ContentData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentStream, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: page %d has no content", ErrContentStream, c.options.page)
	}

	return graphicsstate.NewPathExtractor(page.Height()).ExtractFromBytes(data)
}

// reconstruct runs interpretation and signal recovery, accumulating a
// warning per empty row.
func (c *Converter) reconstruct() ([]float64, ecg.Rows, error) {
	paths, err := c.extractPaths()
	if err != nil {
		return nil, nil, err
	}

	layout := c.options.layout
	baselines, err := ecg.DetectBaselines(paths, layout)
	if err != nil {
		return nil, nil, err
	}

	rows := ecg.ReconstructRows(paths, baselines, layout)
	signal, skipped, err := ecg.BuildSignal(rows, baselines, layout)
	if err != nil {
		return nil, nil, err
	}
	for _, i := range skipped {
		c.warnings = append(c.warnings, Warning{
			Row:     i,
			Message: "no trace ink recovered; row contributes no samples",
		})
	}
	return signal, rows, nil
}

func (c *Converter) summarize(signal []float64, rows ecg.Rows) Summary {
	stats := ecg.Summarize(signal, float64(c.options.recording.SampleRate))
	s := Summary{
		Samples:  stats.Samples,
		Duration: stats.Duration,
		MinMV:    stats.MinMV,
		MaxMV:    stats.MaxMV,
		MeanMV:   stats.MeanMV,
		Rows:     make([]RowSummary, c.options.layout.RowCount),
	}
	for i := 0; i < c.options.layout.RowCount; i++ {
		points := rows[i]
		if len(points) == 0 {
			continue
		}
		s.Rows[i] = RowSummary{
			Points: len(points),
			MinX:   points[0].X,
			MaxX:   points[len(points)-1].X,
		}
	}
	return s
}
