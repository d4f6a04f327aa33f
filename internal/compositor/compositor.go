// Package compositor renders masked, subtitled frames over the full
// duration of a source video and feeds them to an encoder.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/veilcut/veilcut/internal/logging"
	"github.com/veilcut/veilcut/internal/region"
	"github.com/veilcut/veilcut/internal/subtitle"
)

// DefaultStep is the sampled-time advance per composited frame.
const DefaultStep = time.Second / 30

// Options tune the compositing pass.
type Options struct {
	// Step is the sampled-time advance per frame. Zero means DefaultStep.
	Step time.Duration

	// MaskOpacity is the translucent overlay strength in percent [0,100].
	MaskOpacity float64

	// BlurRadius is the box blur radius in pixels applied inside each
	// masked rectangle before the overlay fill.
	BlurRadius int

	// FontHeightFrac scales burned-in text relative to canvas height so
	// output is resolution independent. Zero means 0.045.
	FontHeightFrac float64
}

func (o Options) withDefaults() Options {
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.MaskOpacity < 0 {
		o.MaskOpacity = 0
	}
	if o.MaskOpacity > 100 {
		o.MaskOpacity = 100
	}
	if o.BlurRadius <= 0 {
		o.BlurRadius = 6
	}
	if o.FontHeightFrac <= 0 {
		o.FontHeightFrac = 0.045
	}
	return o
}

// Scheduler is the yield point between frames. The export loop suspends
// through it after every frame so progress observers run before the next
// frame is drawn; tests drive the loop with a no-op scheduler.
type Scheduler interface {
	Yield()
}

// frameScheduler sleeps a fixed pause per frame, or just yields the
// processor when the pause is zero.
type frameScheduler struct {
	pause time.Duration
}

// NewFrameScheduler returns the production scheduler.
func NewFrameScheduler(pause time.Duration) Scheduler {
	return frameScheduler{pause: pause}
}

func (s frameScheduler) Yield() {
	if s.pause > 0 {
		time.Sleep(s.pause)
		return
	}
	runtime.Gosched()
}

// Progress receives export progress in percent [0,100].
type Progress func(percent float64)

// Compositor drives the frame-by-frame export. Frames are composited
// strictly in increasing time order; each frame's draw, overlay and
// progress report completes before the next begins.
type Compositor struct {
	src    FrameSource
	enc    FrameEncoder
	sched  Scheduler
	opts   Options
	logger *logging.Logger
	text   *textRenderer
}

// New validates the source surface and prepares a compositor. An unready
// source (zero dimensions or duration) is rejected here, before any
// encoding starts.
func New(
	src FrameSource,
	enc FrameEncoder,
	sched Scheduler,
	opts Options,
	logger *logging.Logger,
) (*Compositor, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if sched == nil {
		sched = NewFrameScheduler(0)
	}
	opts = opts.withDefaults()

	info := src.Info()
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf(
			"video surface not ready: %dx%d",
			info.Width, info.Height,
		)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("video has no duration")
	}

	text, err := newTextRenderer(opts.FontHeightFrac * float64(info.Height))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare text renderer: %w", err)
	}

	return &Compositor{
		src:    src,
		enc:    enc,
		sched:  sched,
		opts:   opts,
		logger: logger,
		text:   text,
	}, nil
}

// Export composites every frame of the source. Regions are drawn in list
// order; the primary (bottom-most) region also carries the subtitle active
// at the sampled time. The context cancels the loop between frames.
func (c *Compositor) Export(
	ctx context.Context,
	regions []region.Region,
	entries []subtitle.Entry,
	onProgress Progress,
) error {
	info := c.src.Info()
	duration := info.Duration
	primary, hasPrimary := region.Primary(regions)

	c.logger.Infow("starting export",
		"duration", duration,
		"size", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"regions", len(regions),
		"subtitles", len(entries),
	)

	frames := 0
	for t := time.Duration(0); t < duration; t += c.opts.Step {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export cancelled: %w", err)
		}

		frame, err := c.src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break // source ran out slightly before its reported duration
			}
			return fmt.Errorf("failed to read frame at %v: %w", t, err)
		}

		for i, r := range regions {
			rect := pixelRect(r, info.Width, info.Height)
			if rect.Empty() {
				continue
			}
			blurRect(frame, rect, c.opts.BlurRadius)
			fillRect(frame, rect, c.opts.MaskOpacity)

			if hasPrimary && i == primary {
				if active, ok := subtitle.ActiveAt(entries, t); ok {
					c.text.drawCentered(frame, rect, active.DisplayText())
				}
			}
		}

		if err := c.enc.WriteFrame(frame); err != nil {
			return fmt.Errorf("encoder failed at %v: %w", t, err)
		}
		frames++

		if onProgress != nil {
			onProgress(float64(t) / float64(duration) * 100)
		}

		c.sched.Yield()
	}

	c.logger.Infow("export loop finished", "frames", frames)
	return nil
}
