package edf

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RecordingInfo describes the recording metadata written into the EDF+
// headers. String fields are normalized to printable US-ASCII before
// writing; characters with no ASCII decomposition become underscores.
type RecordingInfo struct {
	// PatientID is the EDF+ local patient identification field:
	// "<code> <sex> <birthdate> <name>".
	PatientID string

	// Equipment names the recording device; it becomes the last
	// subfield of the EDF+ local recording identification.
	Equipment string

	// Start is the recording start date and time.
	Start time.Time

	// SignalLabel, Transducer, PhysicalDim and Prefiltering fill the
	// signal channel's subheader fields.
	SignalLabel  string
	Transducer   string
	PhysicalDim  string
	Prefiltering string

	// SampleRate is the signal channel's sample rate in Hz. Records
	// are one second long, so this is also the samples-per-record
	// count.
	SampleRate int

	// AnnotationSamples is the annotation channel's two-byte sample
	// count per record.
	AnnotationSamples int
}

// DefaultRecordingInfo returns the metadata for a KardiaMobile 1L
// printout: 300 Hz single-lead EKG with the device's enhanced filter.
func DefaultRecordingInfo() RecordingInfo {
	return RecordingInfo{
		PatientID:         "X M 04-MAY-1970 Joel_Henderson",
		Equipment:         "KardiaMobile_1L",
		Start:             time.Date(2026, time.February, 13, 22, 42, 0, 0, time.UTC),
		SignalLabel:       "EKG I",
		Transducer:        "KardiaMobile 1L electrode",
		PhysicalDim:       "mV",
		Prefiltering:      "Enhanced Filter, 50Hz mains",
		SampleRate:        300,
		AnnotationSamples: 57,
	}
}

// recordingID builds the EDF+ local recording identification field:
// "Startdate <dd-MMM-yyyy> X X <equipment>".
func (r RecordingInfo) recordingID() string {
	date := strings.ToUpper(r.Start.Format("02-Jan-2006"))
	return "Startdate " + date + " X X " + asciiField(r.Equipment)
}

func (r RecordingInfo) startDate() string {
	return r.Start.Format("02.01.06")
}

func (r RecordingInfo) startTime() string {
	return r.Start.Format("15.04.05")
}

// stripMarks decomposes accented characters and removes the combining
// marks, so e.g. "é" survives as "e".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// asciiField reduces s to printable US-ASCII. Runes that remain
// outside the printable range after mark stripping are replaced with
// underscores.
func asciiField(s string) string {
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		stripped = s
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if r < 0x20 || r > 0x7e {
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}
