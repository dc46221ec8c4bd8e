package ocr

import (
	"strconv"
	"strings"
	"time"
)

// Banner holds the fields printed in a report's header banner. Fields
// the parser cannot find stay at their zero values.
type Banner struct {
	Name      string    // patient name, first non-empty banner line
	Recorded  time.Time // recording date and time
	HeartRate int       // average heart rate in BPM
	Note      string    // rhythm classification, e.g. "Normal Sinus Rhythm"
}

// recordedLayouts are the date formats KardiaMobile prints, tried in
// order.
var recordedLayouts = []string{
	"January 2, 2006 at 3:04 PM",
	"January 2, 2006, 3:04 PM",
	"Jan 2, 2006 at 3:04 PM",
	"2006-01-02 15:04",
}

// rhythm notes as printed by the device.
var rhythmNotes = []string{
	"Normal Sinus Rhythm",
	"Possible Atrial Fibrillation",
	"Bradycardia",
	"Tachycardia",
	"Unclassified",
}

// ParseBanner extracts the banner fields from OCR output. The parser
// is line-oriented and tolerant: unrecognized lines are skipped, and
// OCR noise around a recognizable field does not hide it.
func ParseBanner(text string) Banner {
	var b Banner
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if b.Recorded.IsZero() {
			if t, ok := parseRecorded(line); ok {
				b.Recorded = t
				continue
			}
		}
		if b.HeartRate == 0 {
			if bpm, ok := parseHeartRate(line); ok {
				b.HeartRate = bpm
				continue
			}
		}
		if b.Note == "" {
			if note, ok := matchRhythm(line); ok {
				b.Note = note
				continue
			}
		}
		if b.Name == "" {
			b.Name = line
		}
	}
	return b
}

func parseRecorded(line string) (time.Time, bool) {
	for _, layout := range recordedLayouts {
		if t, err := time.Parse(layout, line); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHeartRate finds "<n> BPM" anywhere in the line.
func parseHeartRate(line string) (int, bool) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if !strings.EqualFold(strings.Trim(f, ".,"), "bpm") || i == 0 {
			continue
		}
		if n, err := strconv.Atoi(fields[i-1]); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func matchRhythm(line string) (string, bool) {
	for _, note := range rhythmNotes {
		if strings.EqualFold(line, note) {
			return note, true
		}
	}
	return "", false
}
