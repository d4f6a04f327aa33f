package compositor

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"github.com/veilcut/veilcut/internal/region"
	"github.com/veilcut/veilcut/internal/subtitle"
	"github.com/veilcut/veilcut/internal/video"
)

// fakeSource produces uniform white frames on demand.
type fakeSource struct {
	info     video.Info
	maxReads int // 0 means unlimited
	reads    int
}

func (s *fakeSource) Info() video.Info { return s.info }

func (s *fakeSource) Next() (*image.RGBA, error) {
	if s.maxReads > 0 && s.reads >= s.maxReads {
		return nil, io.EOF
	}
	s.reads++
	img := image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img, nil
}

func (s *fakeSource) Close() error { return nil }

type fakeEncoder struct {
	frames   []*image.RGBA
	failOn   int // fail when writing frame index failOn (1-based), 0 disables
	closed   bool
	writeErr error
}

func (e *fakeEncoder) WriteFrame(img *image.RGBA) error {
	if e.failOn > 0 && len(e.frames)+1 == e.failOn {
		e.writeErr = errors.New("disk full")
		return e.writeErr
	}
	e.frames = append(e.frames, img)
	return nil
}

func (e *fakeEncoder) Close() error { e.closed = true; return nil }
func (e *fakeEncoder) Path() string { return "fake.mp4" }

type countingScheduler struct {
	yields int
}

func (s *countingScheduler) Yield() { s.yields++ }

func testInfo() video.Info {
	return video.Info{
		Path:     "test.mp4",
		Width:    64,
		Height:   48,
		Duration: time.Second,
	}
}

func TestExportFrameCountAndScheduling(t *testing.T) {
	src := &fakeSource{info: testInfo()}
	enc := &fakeEncoder{}
	sched := &countingScheduler{}

	c, err := New(src, enc, sched, Options{Step: 100 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = c.Export(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if len(enc.frames) != 10 {
		t.Errorf("expected 10 frames for 1s at 100ms steps, got %d", len(enc.frames))
	}
	if sched.yields != 10 {
		t.Errorf("expected one yield per frame, got %d", sched.yields)
	}
}

func TestExportProgressIsMonotonic(t *testing.T) {
	src := &fakeSource{info: testInfo()}
	enc := &fakeEncoder{}

	c, err := New(src, enc, nil, Options{Step: 100 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var reports []float64
	err = c.Export(context.Background(), nil, nil, func(percent float64) {
		reports = append(reports, percent)
	})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if len(reports) != len(enc.frames) {
		t.Fatalf(
			"expected a report per frame, got %d reports for %d frames",
			len(reports), len(enc.frames),
		)
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] < reports[i-1] {
			t.Fatalf("progress went backwards: %v then %v", reports[i-1], reports[i])
		}
	}
	for _, p := range reports {
		if p < 0 || p > 100 {
			t.Fatalf("progress out of range: %v", p)
		}
	}
}

func TestExportMasksRegionPixels(t *testing.T) {
	src := &fakeSource{info: testInfo()}
	enc := &fakeEncoder{}

	c, err := New(src, enc, nil, Options{
		Step:        250 * time.Millisecond,
		MaskOpacity: 100,
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	regions := []region.Region{{X: 25, Y: 25, Width: 50, Height: 50}}
	if err := c.Export(context.Background(), regions, nil, nil); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	frame := enc.frames[0]
	rect := pixelRect(regions[0], 64, 48)

	inside := frame.RGBAAt(rect.Min.X+2, rect.Min.Y+2)
	if inside.R > 32 {
		t.Errorf("masked pixel should be darkened, got R=%d", inside.R)
	}

	outside := frame.RGBAAt(0, 0)
	if outside.R != 255 {
		t.Errorf("pixel outside the mask must be untouched, got R=%d", outside.R)
	}
}

func TestExportBurnsTextOnlyIntoPrimaryRegion(t *testing.T) {
	src := &fakeSource{info: testInfo()}
	enc := &fakeEncoder{}

	c, err := New(src, enc, nil, Options{
		Step:           250 * time.Millisecond,
		MaskOpacity:    100,
		FontHeightFrac: 0.25,
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	regions := []region.Region{
		{X: 0, Y: 0, Width: 100, Height: 40},  // upper
		{X: 0, Y: 60, Width: 100, Height: 40}, // bottom-most, primary
	}
	entries := []subtitle.Entry{
		{ID: "a", StartTime: 0, EndTime: time.Second, OriginalText: "HELLO"},
	}

	if err := c.Export(context.Background(), regions, entries, nil); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	frame := enc.frames[0]
	primary := pixelRect(regions[1], 64, 48)
	upper := pixelRect(regions[0], 64, 48)

	if !hasBrightPixel(frame, primary) {
		t.Error("expected burned-in text pixels in the primary region")
	}
	if hasBrightPixel(frame, upper) {
		t.Error("non-primary region must not carry text")
	}
}

func TestExportNoTextOutsideActiveWindow(t *testing.T) {
	src := &fakeSource{info: testInfo()}
	enc := &fakeEncoder{}

	c, err := New(src, enc, nil, Options{
		Step:           250 * time.Millisecond,
		MaskOpacity:    100,
		FontHeightFrac: 0.25,
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	regions := []region.Region{{X: 0, Y: 60, Width: 100, Height: 40}}
	entries := []subtitle.Entry{
		// active only for the first sampled frame
		{ID: "a", StartTime: 0, EndTime: 100 * time.Millisecond, OriginalText: "HI"},
	}

	if err := c.Export(context.Background(), regions, entries, nil); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	rect := pixelRect(regions[0], 64, 48)
	if !hasBrightPixel(enc.frames[0], rect) {
		t.Error("expected text in the frame sampled inside the subtitle window")
	}
	if hasBrightPixel(enc.frames[1], rect) {
		t.Error("expected no text once the subtitle window has passed")
	}
}

func TestExportCancellation(t *testing.T) {
	src := &fakeSource{info: testInfo()}
	enc := &fakeEncoder{}

	c, err := New(src, enc, nil, Options{Step: 100 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Export(ctx, nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in the chain, got %v", err)
	}
	if len(enc.frames) != 0 {
		t.Errorf("no frames should be written after cancellation, got %d", len(enc.frames))
	}
}

func TestExportStopsAtSourceEOF(t *testing.T) {
	src := &fakeSource{info: testInfo(), maxReads: 3}
	enc := &fakeEncoder{}

	c, err := New(src, enc, nil, Options{Step: 100 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.Export(context.Background(), nil, nil, nil); err != nil {
		t.Fatalf("export should tolerate an early EOF: %v", err)
	}
	if len(enc.frames) != 3 {
		t.Errorf("expected 3 frames before EOF, got %d", len(enc.frames))
	}
}

func TestExportSurfacesEncoderFailure(t *testing.T) {
	src := &fakeSource{info: testInfo()}
	enc := &fakeEncoder{failOn: 2}

	c, err := New(src, enc, nil, Options{Step: 100 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = c.Export(context.Background(), nil, nil, nil)
	if err == nil {
		t.Fatal("expected encoder failure to abort the export")
	}
	if len(enc.frames) != 1 {
		t.Errorf("export must stop at the failing frame, got %d written", len(enc.frames))
	}
}

func TestNewRejectsUnreadySurface(t *testing.T) {
	cases := []struct {
		name string
		info video.Info
	}{
		{"zero width", video.Info{Height: 48, Duration: time.Second}},
		{"zero height", video.Info{Width: 64, Duration: time.Second}},
		{"zero duration", video.Info{Width: 64, Height: 48}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{info: tc.info}
			if _, err := New(src, &fakeEncoder{}, nil, Options{}, nil); err == nil {
				t.Error("expected rejection before any encoding")
			}
		})
	}
}

func TestPixelRectClipsToFrame(t *testing.T) {
	r := region.Region{X: 50, Y: 50, Width: 50, Height: 50}
	rect := pixelRect(r, 100, 100)
	if rect != image.Rect(50, 50, 100, 100) {
		t.Errorf("unexpected rect: %v", rect)
	}

	empty := pixelRect(region.Region{X: 10, Y: 10}, 100, 100)
	if !empty.Empty() {
		t.Errorf("zero-size region should map to an empty rect, got %v", empty)
	}
}

func hasBrightPixel(img *image.RGBA, rect image.Rectangle) bool {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if img.RGBAAt(x, y).R >= 200 {
				return true
			}
		}
	}
	return false
}
