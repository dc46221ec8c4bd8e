package edf

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// encode runs Write over a buffer with default metadata.
func encode(t *testing.T, signal []float64) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, signal, DefaultRecordingInfo()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.Bytes()
}

// oneSecond is 300 samples of a small ramp spanning -1..1 mV.
func oneSecond() []float64 {
	signal := make([]float64, 300)
	for i := range signal {
		signal[i] = -1.0 + 2.0*float64(i)/299.0
	}
	return signal
}

func TestWriteSingleRecordLayout(t *testing.T) {
	data := encode(t, oneSecond())

	// 256 main header + 2*256 subheaders + 300 two-byte samples +
	// 57 two-byte annotation samples.
	want := 256 + 512 + 600 + 114
	if len(data) != want {
		t.Fatalf("file size = %d, want %d", len(data), want)
	}
}

func TestWriteMainHeader(t *testing.T) {
	data := encode(t, oneSecond())

	fields := []struct {
		name       string
		off, width int
		want       string
	}{
		{"version", 0, 8, "0"},
		{"patient id", 8, 80, "X M 04-MAY-1970 Joel_Henderson"},
		{"recording id", 88, 80, "Startdate 13-FEB-2026 X X KardiaMobile_1L"},
		{"start date", 168, 8, "13.02.26"},
		{"start time", 176, 8, "22.42.00"},
		{"header bytes", 184, 8, "768"},
		{"reserved", 192, 44, "EDF+C"},
		{"record count", 236, 8, "1"},
		{"record duration", 244, 8, "1"},
		{"channel count", 252, 4, "2"},
	}
	for _, f := range fields {
		got := data[f.off : f.off+f.width]
		want := make([]byte, f.width)
		copy(want, f.want)
		for i := len(f.want); i < f.width; i++ {
			want[i] = ' '
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s = %q, want %q", f.name, got, want)
		}
	}
}

func TestWriteSubheadersGroupedByField(t *testing.T) {
	data := encode(t, oneSecond())

	// Both labels come before the first transducer field.
	if got := string(data[256:272]); got != "EKG I           " {
		t.Errorf("signal label = %q", got)
	}
	if got := string(data[272:288]); got != "EDF Annotations " {
		t.Errorf("annotation label = %q", got)
	}
	if got := string(data[288:313]); got != "KardiaMobile 1L electrode" {
		t.Errorf("transducer = %q", got)
	}

	// Digital range fields: 256 + 16*2 + 80*2 + 8*2 + 8*2 + 8*2 = 496.
	if got := string(data[496:504]); got != "-32768  " {
		t.Errorf("signal digital min = %q", got)
	}
	if got := string(data[512:520]); got != "32767   " {
		t.Errorf("signal digital max = %q", got)
	}

	// Samples per record: after both prefiltering fields ending at 688.
	if got := string(data[688:696]); got != "300     " {
		t.Errorf("samples per record = %q", got)
	}
	if got := string(data[696:704]); got != "57      " {
		t.Errorf("annotation samples = %q", got)
	}
}

func TestWriteAnnotationTAL(t *testing.T) {
	signal := make([]float64, 301) // forces a second, padded record
	copy(signal, oneSecond())
	data := encode(t, signal)

	recordSize := 600 + 114
	for rec, want := range []string{"+0\x14\x14", "+1\x14\x14"} {
		off := 768 + rec*recordSize + 600
		block := data[off : off+114]
		if string(block[:len(want)]) != want {
			t.Errorf("record %d TAL = %q, want prefix %q", rec, block[:len(want)], want)
		}
		for i := len(want); i < len(block); i++ {
			if block[i] != 0 {
				t.Errorf("record %d TAL byte %d = %#x, want null padding", rec, i, block[i])
				break
			}
		}
	}
}

func TestWriteZeroPadsFinalRecord(t *testing.T) {
	signal := make([]float64, 301)
	for i := range signal {
		signal[i] = 1.0
	}
	data := encode(t, signal)

	if got := string(data[236:244]); got != "2       " {
		t.Fatalf("record count = %q, want 2", got)
	}

	// Padding samples carry physical 0.0 run through digitization.
	physMin, physMax := physicalRange(signal)
	wantPad := digitize(0.0, physMin, physMax)
	off := 768 + (600 + 114) + 2*1 // second record, sample index 1
	got := int16(uint16(data[off]) | uint16(data[off+1])<<8)
	if got != wantPad {
		t.Errorf("padding sample = %d, want %d", got, wantPad)
	}
}

func TestDigitizeMidpoint(t *testing.T) {
	// Symmetric range: physical zero lands on the digital midpoint
	// within one rounding step.
	if d := digitize(0.0, -1.1, 1.1); d < -1 || d > 1 {
		t.Errorf("digitize(0) = %d, want within one step of 0", d)
	}
	if d := digitize(-1.1, -1.1, 1.1); d != -32768 {
		t.Errorf("digitize(phys min) = %d, want -32768", d)
	}
	if d := digitize(1.1, -1.1, 1.1); d != 32767 {
		t.Errorf("digitize(phys max) = %d, want 32767", d)
	}
	if d := digitize(5.0, -1.1, 1.1); d != 32767 {
		t.Errorf("digitize above range = %d, want clamp to 32767", d)
	}
}

func TestDigitizeRoundTrip(t *testing.T) {
	signal := oneSecond()
	physMin, physMax := physicalRange(signal)
	step := (physMax - physMin) / 65535

	for _, v := range signal {
		d := digitize(v, physMin, physMax)
		back := physMin + (float64(d)-digitalMin)/(digitalMax-digitalMin)*(physMax-physMin)
		if math.Abs(back-v) > step {
			t.Fatalf("round trip of %v drifted to %v (step %v)", v, back, step)
		}
	}
}

func TestFormatPhysical(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.764, "1.764000"},
		{-0.123456789, "-0.12346"},
		{12345678.9, "12345679"},
		{0, "0.000000"},
		{-1.1, "-1.10000"},
	}
	for _, tt := range tests {
		if got := formatPhysical(tt.in); got != tt.want {
			t.Errorf("formatPhysical(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteErrors(t *testing.T) {
	var buf bytes.Buffer

	if err := Write(&buf, nil, DefaultRecordingInfo()); !errors.Is(err, ErrEmptySignal) {
		t.Errorf("empty signal err = %v, want ErrEmptySignal", err)
	}

	info := DefaultRecordingInfo()
	info.SampleRate = 0
	if err := Write(&buf, oneSecond(), info); !errors.Is(err, ErrBadRecordingInfo) {
		t.Errorf("zero rate err = %v, want ErrBadRecordingInfo", err)
	}

	info = DefaultRecordingInfo()
	info.AnnotationSamples = 0
	if err := Write(&buf, oneSecond(), info); !errors.Is(err, ErrBadRecordingInfo) {
		t.Errorf("zero annotation width err = %v, want ErrBadRecordingInfo", err)
	}
}

func TestAsciiField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"EKG I", "EKG I"},
		{"Séverin Müller", "Severin Muller"},
		{"50µV", "50_V"},
		{"tab\there", "tab_here"},
	}
	for _, tt := range tests {
		if got := asciiField(tt.in); got != tt.want {
			t.Errorf("asciiField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := t.TempDir() + "/out.edf"
	if err := WriteFile(path, oneSecond(), DefaultRecordingInfo()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}
