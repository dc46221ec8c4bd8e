package edf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ErrEmptySignal reports an encode attempt with no samples; the
// physical range of the signal channel would be undefined.
var ErrEmptySignal = errors.New("signal has no samples")

// ErrBadRecordingInfo reports RecordingInfo values the format cannot
// express.
var ErrBadRecordingInfo = errors.New("invalid recording info")

const (
	digitalMin = -32768
	digitalMax = 32767

	// physMargin widens the physical range on both sides so samples at
	// the true extrema never clip.
	physMargin = 0.1

	channelCount   = 2
	recordDuration = 1 // seconds
)

// WriteFile encodes signal as an EDF+ file at path. The file is
// created (or truncated) and closed on every return path; on encode
// failure the partial file is left for inspection and the error is
// returned.
func WriteFile(path string, signal []float64, info RecordingInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := Write(f, signal, info); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// Write encodes signal as an EDF+ byte stream on w: 256-byte main
// header, 256 bytes of subheader per channel, then the data records.
func Write(w io.Writer, signal []float64, info RecordingInfo) error {
	if len(signal) == 0 {
		return ErrEmptySignal
	}
	if info.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrBadRecordingInfo, info.SampleRate)
	}
	if info.AnnotationSamples <= 0 {
		return fmt.Errorf("%w: annotation samples %d", ErrBadRecordingInfo, info.AnnotationSamples)
	}

	samplesPerRecord := info.SampleRate * recordDuration
	records := (len(signal) + samplesPerRecord - 1) / samplesPerRecord
	physMin, physMax := physicalRange(signal)

	bw := bufio.NewWriter(w)
	enc := &encoder{w: bw}

	enc.writeHeader(info, records)
	enc.writeSubheaders(info, physMin, physMax, samplesPerRecord)

	for rec := 0; rec < records; rec++ {
		start := rec * samplesPerRecord
		for i := 0; i < samplesPerRecord; i++ {
			v := 0.0
			if idx := start + i; idx < len(signal) {
				v = signal[idx]
			}
			enc.writeSample(digitize(v, physMin, physMax))
		}
		enc.writeAnnotation(rec*recordDuration, info.AnnotationSamples)
	}

	if enc.err != nil {
		return fmt.Errorf("writing edf: %w", enc.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing edf: %w", err)
	}
	return nil
}

// physicalRange returns the signal's extrema widened by the clipping
// margin.
func physicalRange(signal []float64) (min, max float64) {
	min, max = signal[0], signal[0]
	for _, v := range signal {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min - physMargin, max + physMargin
}

// digitize maps a physical value onto the signed 16-bit digital range,
// clamping before rounding so extrema cannot overflow.
func digitize(v, physMin, physMax float64) int16 {
	scaled := digitalMin + (v-physMin)/(physMax-physMin)*(digitalMax-digitalMin)
	if scaled < digitalMin {
		scaled = digitalMin
	}
	if scaled > digitalMax {
		scaled = digitalMax
	}
	return int16(math.Round(scaled))
}

// formatPhysical renders a physical-range bound as decimal text no
// wider than its 8-byte field, dropping precision from 6 decimals
// toward 0 until it fits.
func formatPhysical(v float64) string {
	for prec := 6; prec >= 0; prec-- {
		s := strconv.FormatFloat(v, 'f', prec, 64)
		if len(s) <= 8 {
			return s
		}
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// encoder writes fixed-width fields, holding the first error so call
// sites stay linear.
type encoder struct {
	w   *bufio.Writer
	err error
}

// field writes value space-padded or truncated to exactly width bytes.
func (e *encoder) field(value string, width int) {
	if e.err != nil {
		return
	}
	if len(value) > width {
		value = value[:width]
	}
	if _, err := e.w.WriteString(value); err != nil {
		e.err = err
		return
	}
	for i := len(value); i < width; i++ {
		if err := e.w.WriteByte(' '); err != nil {
			e.err = err
			return
		}
	}
}

func (e *encoder) writeHeader(info RecordingInfo, records int) {
	headerBytes := 256 + channelCount*256

	e.field("0", 8)
	e.field(asciiField(info.PatientID), 80)
	e.field(info.recordingID(), 80)
	e.field(info.startDate(), 8)
	e.field(info.startTime(), 8)
	e.field(strconv.Itoa(headerBytes), 8)
	e.field("EDF+C", 44)
	e.field(strconv.Itoa(records), 8)
	e.field(strconv.Itoa(recordDuration), 8)
	e.field(strconv.Itoa(channelCount), 4)
}

// writeSubheaders emits the per-channel fields grouped by field: both
// channels' labels, then both transducers, and so on.
func (e *encoder) writeSubheaders(info RecordingInfo, physMin, physMax float64, samplesPerRecord int) {
	e.field(asciiField(info.SignalLabel), 16)
	e.field("EDF Annotations", 16)

	e.field(asciiField(info.Transducer), 80)
	e.field("", 80)

	e.field(asciiField(info.PhysicalDim), 8)
	e.field("", 8)

	e.field(formatPhysical(physMin), 8)
	e.field("-1", 8)

	e.field(formatPhysical(physMax), 8)
	e.field("1", 8)

	e.field(strconv.Itoa(digitalMin), 8)
	e.field(strconv.Itoa(digitalMin), 8)

	e.field(strconv.Itoa(digitalMax), 8)
	e.field(strconv.Itoa(digitalMax), 8)

	e.field(asciiField(info.Prefiltering), 80)
	e.field("", 80)

	e.field(strconv.Itoa(samplesPerRecord), 8)
	e.field(strconv.Itoa(info.AnnotationSamples), 8)

	e.field("", 32)
	e.field("", 32)
}

func (e *encoder) writeSample(v int16) {
	if e.err != nil {
		return
	}
	u := uint16(v)
	if err := e.w.WriteByte(byte(u)); err != nil {
		e.err = err
		return
	}
	e.err = e.w.WriteByte(byte(u >> 8))
}

// writeAnnotation emits one TAL marking the record's onset, null-padded
// to the annotation channel's byte width.
func (e *encoder) writeAnnotation(onsetSeconds, annotationSamples int) {
	if e.err != nil {
		return
	}
	tal := fmt.Sprintf("+%d\x14\x14", onsetSeconds)
	width := annotationSamples * 2
	if len(tal) > width {
		tal = tal[:width]
	}
	if _, err := e.w.WriteString(tal); err != nil {
		e.err = err
		return
	}
	for i := len(tal); i < width; i++ {
		if err := e.w.WriteByte(0); err != nil {
			e.err = err
			return
		}
	}
}
