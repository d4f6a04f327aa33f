package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/veilcut/veilcut/internal/speech"
	"github.com/veilcut/veilcut/internal/subtitle"
	"github.com/veilcut/veilcut/internal/video"
)

var dialogueCmd = &cobra.Command{
	Use:   "dialogue [video_file]",
	Short: "Extract dialogue from a video into an SRT file",
	Long: `Dialogue sends the video's audio track to the speech service and
writes the recognized spans as an SRT file, ready for translation and
burn-in.

The service endpoint comes from the config file or the
VEILCUT_SPEECH_URL environment variable.

Examples:
  veilcut dialogue video.mp4
  veilcut dialogue video.mp4 -o dialogue.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runDialogue,
}

func init() {
	rootCmd.AddCommand(dialogueCmd)
}

func runDialogue(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if outputPath == "" {
		base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
		outputPath = base + ".srt"
	}

	client, err := newSpeechClient()
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "veilcut-dialogue-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	audioPath := filepath.Join(tmpDir, "audio.wav")

	logger.Infow("Extracting audio track", "video", videoPath)
	if err := video.ExtractAudio(
		ctx,
		videoPath,
		audioPath,
		video.DefaultExtractAudioOptions(),
	); err != nil {
		return fmt.Errorf("failed to extract audio: %w", err)
	}

	logger.Infow("Requesting dialogue extraction")
	spans, err := client.ExtractDialogue(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("dialogue extraction failed: %w", err)
	}
	if len(spans) == 0 {
		return fmt.Errorf("no dialogue found in video")
	}

	entries := speech.Entries(spans)
	if err := subtitle.SaveSRT(outputPath, entries); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Dialogue extracted successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(entries))

	return nil
}

func newSpeechClient() (*speech.Client, error) {
	baseURL := cfg.Speech.BaseURL
	if env := os.Getenv("VEILCUT_SPEECH_URL"); env != "" {
		baseURL = env
	}
	if baseURL == "" {
		return nil, fmt.Errorf(
			"speech service URL is required: set speech.base_url in the config or VEILCUT_SPEECH_URL",
		)
	}

	apiKey := cfg.Speech.APIKey
	if env := os.Getenv("VEILCUT_SPEECH_API_KEY"); env != "" {
		apiKey = env
	}

	return speech.NewClient(
		baseURL,
		apiKey,
		speech.WithRetryPolicy(speech.RetryPolicy{
			MaxAttempts: cfg.Speech.MaxAttempts,
			BaseDelay:   cfg.Speech.BaseDelay,
			MaxDelay:    cfg.Speech.MaxDelay,
		}),
		speech.WithLogger(logger),
	)
}
