package compositor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	ffmpegbin "github.com/veilcut/veilcut/internal/ffmpeg"
	"github.com/veilcut/veilcut/internal/subtitle"
)

// MixVoiceTrack lays every entry's synthesized cue audio onto one track,
// each delayed to its subtitle start time. Returns "" when no entry has
// cue audio. The result plugs into EncoderOptions.VoiceTrack, closing the
// gap where export used to wire an audio destination nothing fed.
func MixVoiceTrack(
	ctx context.Context,
	entries []subtitle.Entry,
	outPath string,
) (string, error) {
	var cues []subtitle.Entry
	for _, e := range entries {
		if e.AudioRef != "" {
			cues = append(cues, e)
		}
	}
	if len(cues) == 0 {
		return "", nil
	}

	bin, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return "", err
	}

	args := []string{"-y"}
	for _, cue := range cues {
		args = append(args, "-i", cue.AudioRef)
	}

	var fc strings.Builder
	var labels strings.Builder
	for i, cue := range cues {
		ms := cue.StartTime.Milliseconds()
		fmt.Fprintf(&fc, "[%d:a]adelay=%d|%d[d%d];", i, ms, ms, i)
		fmt.Fprintf(&labels, "[d%d]", i)
	}
	fmt.Fprintf(&fc, "%samix=inputs=%d:normalize=0[voice]", labels.String(), len(cues))

	args = append(args,
		"-filter_complex", fc.String(),
		"-map", "[voice]",
		"-ac", "2",
		"-ar", "44100",
		outPath,
	)

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf(
			"voice track mix failed: %w (%s)",
			err,
			tailLines(string(out), 5),
		)
	}

	return outPath, nil
}
