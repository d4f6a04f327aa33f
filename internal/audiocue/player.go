package audiocue

import (
	"fmt"
	"os"
	"os/exec"

	ffmpegbin "github.com/veilcut/veilcut/internal/ffmpeg"
)

// Player is a playable handle for one synthesized-speech artifact.
type Player interface {
	// Start begins playback from the current position.
	Start() error
	// Rewind resets the position to the start of the clip.
	Rewind()
	// Stop halts playback, keeping the handle reusable.
	Stop()
	// Close releases the handle.
	Close() error
}

// Factory builds a player from an audio ref. The production factory wraps
// ffplay; tests substitute fakes.
type Factory func(audioRef string) (Player, error)

// ffplayPlayer plays an audio file by spawning ffplay. Each Start spawns a
// fresh process, so playback always begins at the clip start; Rewind only
// discards a paused process.
type ffplayPlayer struct {
	bin  string
	path string
	cmd  *exec.Cmd
}

// NewFFplayFactory resolves the ffplay binary once and returns a factory
// for file-backed audio refs.
func NewFFplayFactory() (Factory, error) {
	bin, err := ffmpegbin.FFplayPath()
	if err != nil {
		return nil, err
	}
	return func(audioRef string) (Player, error) {
		if _, err := os.Stat(audioRef); err != nil {
			return nil, fmt.Errorf("cue audio not found: %w", err)
		}
		return &ffplayPlayer{bin: bin, path: audioRef}, nil
	}, nil
}

func (p *ffplayPlayer) Start() error {
	p.Stop()
	cmd := exec.Command(p.bin,
		"-nodisp",
		"-autoexit",
		"-loglevel", "quiet",
		p.path,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffplay start failed: %w", err)
	}
	p.cmd = cmd
	go func() { _ = cmd.Wait() }()
	return nil
}

func (p *ffplayPlayer) Rewind() {
	p.Stop()
}

func (p *ffplayPlayer) Stop() {
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	p.cmd = nil
}

func (p *ffplayPlayer) Close() error {
	p.Stop()
	return nil
}
