package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/veilcut/veilcut/internal/audiocue"
	"github.com/veilcut/veilcut/internal/subtitle"
)

var previewCmd = &cobra.Command{
	Use:   "preview [subtitle_file]",
	Short: "Play synthesized voice clips on the subtitle timeline",
	Long: `Preview walks the subtitle timeline in real time and plays the
voice clip of whichever entry is active, the way playback cueing works
during editing. Requires a voice manifest produced by the voice command.

Press Ctrl-C to stop.

Examples:
  veilcut preview dialogue.ja.srt
  veilcut preview dialogue.ja.srt --from 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().
		Duration("from", 0, "Timeline position to start from")
}

func runPreview(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	from, _ := cmd.Flags().GetDuration("from")

	entries, err := subtitle.OpenSRT(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	if err := applyVoiceManifest(subtitlePath, entries); err != nil {
		return err
	}

	cued := 0
	var end time.Duration
	for _, e := range entries {
		if e.AudioRef != "" {
			cued++
		}
		if e.EndTime > end {
			end = e.EndTime
		}
	}
	if cued == 0 {
		return fmt.Errorf(
			"no voice clips found: run `veilcut voice %s` first",
			subtitlePath,
		)
	}

	factory, err := audiocue.NewFFplayFactory()
	if err != nil {
		return fmt.Errorf("failed to prepare audio playback: %w", err)
	}

	cuer := audiocue.New(factory, logger)
	defer cuer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Infow("Starting preview",
		"entries", len(entries),
		"clips", cued,
		"from", from,
		"end", end,
	)

	const tick = 100 * time.Millisecond
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for t := from; t <= end; {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-ticker.C:
			t += tick
			cuer.Update(entries, t)

			if active, ok := subtitle.ActiveAt(entries, t); ok {
				fmt.Printf("\r%-8v %s\x1b[K", t.Truncate(tick), active.DisplayText())
			} else {
				fmt.Printf("\r%-8v\x1b[K", t.Truncate(tick))
			}
		}
	}
	fmt.Println()

	return nil
}
