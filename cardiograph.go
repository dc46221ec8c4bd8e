// Package cardiograph provides a fluent API for recovering an ECG
// waveform from a vector-graphics PDF printout and writing it as an
// EDF+ biosignal file.
//
// Basic usage:
//
//	summary, warnings, err := cardiograph.Open("ecg.pdf").Convert("ecg.edf")
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", cardiograph.FormatWarnings(warnings))
//	}
//
// With options:
//
//	summary, _, err := cardiograph.Open("ecg.pdf").
//	    Page(3).
//	    SampleRate(250).
//	    Convert("ecg.edf")
//
// For advanced use cases the lower-level reader, graphicsstate, ecg
// and edf packages are also available.
package cardiograph

import (
	"github.com/tsawler/cardiograph/reader"
)

// Open opens a PDF printout and returns a Converter for fluent
// configuration. The returned Converter must be closed when done,
// either explicitly via Close() or implicitly by a terminal operation
// like Convert().
//
// Example:
//
//	summary, warnings, err := cardiograph.Open("ecg.pdf").Convert("ecg.edf")
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates a Converter from an already-opened reader.Reader.
// This is useful when you need more control over the reader lifecycle.
// Note: the caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.Open("ecg.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	signal, warnings, err := cardiograph.FromReader(r).Signal()
func FromReader(r *reader.Reader) *Converter {
	return &Converter{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := cardiograph.Must(cardiograph.Open("ecg.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustConvert is a helper that wraps a call to Convert() or Signal()
// and panics if the error is non-nil. It discards warnings and returns
// just the value. It is intended for use in scripts or tests where
// error handling would be cumbersome.
//
// Example:
//
//	summary := cardiograph.MustConvert(cardiograph.Open("ecg.pdf").Convert("ecg.edf"))
func MustConvert[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
