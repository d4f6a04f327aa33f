package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/veilcut/veilcut/internal/ffmpeg"
	"github.com/veilcut/veilcut/internal/video"
)

// FrameSource yields decoded source frames in strictly increasing time
// order, one per sampled step. Next returns io.EOF when the source ends.
type FrameSource interface {
	Info() video.Info
	Next() (*image.RGBA, error)
	Close() error
}

// FrameEncoder consumes composited frames and produces the output
// artifact. Close finalizes the container.
type FrameEncoder interface {
	WriteFrame(*image.RGBA) error
	Close() error
	Path() string
}

// ffmpegSource streams rawvideo RGBA frames out of an ffmpeg decode
// process at the export frame rate.
type ffmpegSource struct {
	info video.Info
	pr   *io.PipeReader
	done chan error
}

// NewFFmpegSource probes the video and starts a decode pipe producing
// frames at fps.
func NewFFmpegSource(ctx context.Context, path string, fps int) (FrameSource, error) {
	info, err := video.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	bin, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	stream := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgba",
			"r":       fps,
		}).
		WithOutput(pw).
		SetFfmpegPath(bin).
		Silent(true)

	done := make(chan error, 1)
	go func() {
		err := stream.Run()
		if err != nil {
			pw.CloseWithError(fmt.Errorf("ffmpeg decode failed: %w", err))
		} else {
			pw.Close()
		}
		done <- err
	}()

	return &ffmpegSource{info: *info, pr: pr, done: done}, nil
}

func (s *ffmpegSource) Info() video.Info { return s.info }

func (s *ffmpegSource) Next() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	if _, err := io.ReadFull(s.pr, img.Pix); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return img, nil
}

func (s *ffmpegSource) Close() error {
	s.pr.Close()
	return nil
}

// EncoderOptions configure the output artifact.
type EncoderOptions struct {
	OutPath string
	Width   int
	Height  int
	FPS     int

	// SourceAudio is the path whose audio track is carried into the
	// artifact. Empty when the source has no audio.
	SourceAudio string

	// VoiceTrack is an optional pre-mixed synthesized-voice file, mixed
	// over the source audio when both are present.
	VoiceTrack string
}

// mp4Encoder pipes rawvideo frames into an ffmpeg encode process that
// muxes the composited visual stream with the audio inputs.
type mp4Encoder struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	outPath string
}

// NewMP4Encoder starts the encode process. The audio graph depends on what
// exists: source only, voice only, or both mixed together.
func NewMP4Encoder(ctx context.Context, opts EncoderOptions) (FrameEncoder, error) {
	if opts.OutPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf(
			"invalid encoder geometry: %dx%d@%d",
			opts.Width, opts.Height, opts.FPS,
		)
	}

	bin, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", strconv.Itoa(opts.FPS),
		"-i", "-",
	}

	audioInputs := 0
	if opts.SourceAudio != "" {
		args = append(args, "-i", opts.SourceAudio)
		audioInputs++
	}
	if opts.VoiceTrack != "" {
		args = append(args, "-i", opts.VoiceTrack)
		audioInputs++
	}

	args = append(args, "-map", "0:v")
	switch audioInputs {
	case 1:
		args = append(args, "-map", "1:a:0")
	case 2:
		args = append(args,
			"-filter_complex",
			"[1:a][2:a]amix=inputs=2:duration=first:dropout_transition=0[aout]",
			"-map", "[aout]",
		)
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
	)
	if audioInputs > 0 {
		args = append(args, "-c:a", "aac", "-b:a", "128k", "-shortest")
	}
	args = append(args, "-movflags", "+faststart", opts.OutPath)

	cmd := exec.CommandContext(ctx, bin, args...)
	enc := &mp4Encoder{cmd: cmd, outPath: opts.OutPath}
	cmd.Stderr = &enc.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open encoder stdin: %w", err)
	}
	enc.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	return enc, nil
}

func (e *mp4Encoder) WriteFrame(img *image.RGBA) error {
	if _, err := e.stdin.Write(img.Pix); err != nil {
		return fmt.Errorf("encoder rejected frame: %w", err)
	}
	return nil
}

func (e *mp4Encoder) Close() error {
	if err := e.stdin.Close(); err != nil {
		return fmt.Errorf("failed to close encoder input: %w", err)
	}
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf(
			"encoder exited with error: %w (%s)",
			err,
			tailLines(e.stderr.String(), 5),
		)
	}
	return nil
}

func (e *mp4Encoder) Path() string { return e.outPath }

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
