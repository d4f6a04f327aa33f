package video

import "testing"

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 0}, // ffprobe always emits a rational
		{"", 0},
		{"30/0", 0},
		{"abc", 0},
	}

	for _, tc := range cases {
		if got := parseFrameRate(tc.raw); got != tc.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestDefaultExtractAudioOptions(t *testing.T) {
	opts := DefaultExtractAudioOptions()
	if opts.Format != "wav" || opts.SampleRate != 16000 || opts.Channels != 1 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}
