package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veilcut/veilcut/internal/subtitle"
	"gopkg.in/yaml.v3"
)

var voiceCmd = &cobra.Command{
	Use:   "voice [subtitle_file]",
	Short: "Synthesize voice clips for each subtitle entry",
	Long: `Voice sends each subtitle's text to the speech service and caches
the returned audio clips. A manifest written next to the SRT maps
entries to their clips; export --voice and playback cueing read it.

Entries that fail to synthesize are skipped and reported; the manifest
keeps whatever succeeded.

Examples:
  veilcut voice dialogue.ja.srt
  veilcut voice dialogue.ja.srt --direction ja`,
	Args: cobra.ExactArgs(1),
	RunE: runVoice,
}

func init() {
	rootCmd.AddCommand(voiceCmd)

	voiceCmd.Flags().
		String("direction", "", "Translation direction hint passed to the service")
}

// voiceManifest is the sidecar file mapping subtitle entries, by list
// position, to synthesized audio clips.
type voiceManifest struct {
	Subtitles string      `yaml:"subtitles"`
	Clips     []voiceClip `yaml:"clips"`
}

type voiceClip struct {
	Index int    `yaml:"index"`
	Text  string `yaml:"text"`
	Audio string `yaml:"audio"`
}

func voiceManifestPath(subtitlePath string) string {
	return subtitlePath + ".voice.yaml"
}

func runVoice(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	direction, _ := cmd.Flags().GetString("direction")
	if direction == "" {
		direction = cfg.Speech.Voice
	}

	entries, err := subtitle.OpenSRT(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	client, err := newSpeechClient()
	if err != nil {
		return err
	}

	logger.Infow("Synthesizing voice clips",
		"subtitles", subtitlePath,
		"entries", len(entries),
	)

	manifest := voiceManifest{Subtitles: subtitlePath}
	failed := 0
	for i, entry := range entries {
		text := entry.DisplayText()
		if text == "" {
			continue
		}

		audioRef, err := client.Synthesize(ctx, text, direction)
		if err != nil {
			failed++
			logger.Warnw("Failed to synthesize entry",
				"index", i,
				"error", err,
			)
			continue
		}

		manifest.Clips = append(manifest.Clips, voiceClip{
			Index: i,
			Text:  text,
			Audio: audioRef,
		})
		fmt.Printf("\rSynthesizing... %d/%d", i+1, len(entries))
	}
	fmt.Println()

	if len(manifest.Clips) == 0 {
		return fmt.Errorf("no voice clips could be synthesized")
	}

	manifestPath := voiceManifestPath(subtitlePath)
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode voice manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write voice manifest: %w", err)
	}

	fmt.Printf("Voice clips synthesized: %d of %d entries\n",
		len(manifest.Clips), len(entries))
	if failed > 0 {
		fmt.Printf("  Failed entries: %d\n", failed)
	}
	fmt.Printf("  Manifest: %s\n", manifestPath)

	return nil
}

// applyVoiceManifest attaches cached clips to entries by list position.
// A missing manifest is not an error; the caller decides whether bare
// entries are acceptable.
func applyVoiceManifest(subtitlePath string, entries []subtitle.Entry) error {
	data, err := os.ReadFile(voiceManifestPath(subtitlePath))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read voice manifest: %w", err)
	}

	var manifest voiceManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse voice manifest: %w", err)
	}

	for _, clip := range manifest.Clips {
		if clip.Index < 0 || clip.Index >= len(entries) {
			continue
		}
		entries[clip.Index].AudioRef = clip.Audio
	}
	return nil
}
