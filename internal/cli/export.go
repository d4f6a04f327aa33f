package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/veilcut/veilcut/internal/compositor"
	"github.com/veilcut/veilcut/internal/region"
	"github.com/veilcut/veilcut/internal/subtitle"
)

var exportCmd = &cobra.Command{
	Use:   "export [video_file]",
	Short: "Export a video with masked regions and burned-in subtitles",
	Long: `Export renders the video frame by frame, blurring each masked
region and covering it with a translucent overlay. The subtitle active
at each frame's time is burned into the bottom-most region.

Regions are given in percent of the frame as x,y,width,height.

Examples:
  veilcut export video.mp4 --region 10,80,80,15 --subtitles video.srt
  veilcut export video.mp4 --region 0,85,100,15 --opacity 75 -o out.mp4
  veilcut export video.mp4 --region 10,80,80,15 --subtitles dubbed.srt --voice`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringArrayP("region", "r", nil, "Masked region as x,y,w,h in percent (repeatable)")
	exportCmd.Flags().
		StringP("subtitles", "s", "", "SRT file to burn into the primary region")
	exportCmd.Flags().
		Float64("opacity", -1, "Mask opacity in percent 0-100 (default from config)")
	exportCmd.Flags().
		Int("fps", 0, "Output frame rate (default from config)")
	exportCmd.Flags().
		Int("blur", 0, "Blur radius in pixels (default from config)")
	exportCmd.Flags().
		Bool("voice", false, "Mix synthesized voice clips referenced by the subtitles into the output")
}

func runExport(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	regionSpecs, _ := cmd.Flags().GetStringArray("region")
	subtitlePath, _ := cmd.Flags().GetString("subtitles")
	opacity, _ := cmd.Flags().GetFloat64("opacity")
	fps, _ := cmd.Flags().GetInt("fps")
	blur, _ := cmd.Flags().GetInt("blur")
	withVoice, _ := cmd.Flags().GetBool("voice")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if len(regionSpecs) == 0 {
		return fmt.Errorf("at least one --region is required")
	}

	regions := make([]region.Region, 0, len(regionSpecs))
	for _, spec := range regionSpecs {
		r, err := parseRegion(spec)
		if err != nil {
			return err
		}
		regions = append(regions, r)
	}

	var entries []subtitle.Entry
	if subtitlePath != "" {
		var err error
		entries, err = subtitle.OpenSRT(subtitlePath)
		if err != nil {
			return fmt.Errorf("failed to parse subtitle file: %w", err)
		}
	}

	if opacity < 0 {
		opacity = cfg.Export.MaskOpacity
	}
	if fps <= 0 {
		fps = cfg.Export.FrameRate
	}
	if blur <= 0 {
		blur = cfg.Export.BlurRadius
	}
	if outputPath == "" {
		base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
		outputPath = base + ".masked.mp4"
	}

	src, err := compositor.NewFFmpegSource(ctx, videoPath, fps)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}
	defer src.Close()

	info := src.Info()
	logger.Infow("Opened video",
		"path", videoPath,
		"size", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"duration", info.Duration,
	)

	voiceTrack := ""
	if withVoice {
		if subtitlePath == "" {
			return fmt.Errorf("--voice requires --subtitles")
		}
		if err := applyVoiceManifest(subtitlePath, entries); err != nil {
			return err
		}
		voiceTrack, err = compositor.MixVoiceTrack(
			ctx,
			entries,
			filepath.Join(os.TempDir(), "veilcut-voice.m4a"),
		)
		if err != nil {
			return fmt.Errorf("failed to mix voice track: %w", err)
		}
		if voiceTrack == "" {
			logger.Warnw("No subtitle entries carry voice clips, skipping voice mix")
		} else {
			defer os.Remove(voiceTrack)
		}
	}

	encOpts := compositor.EncoderOptions{
		OutPath:    outputPath,
		Width:      info.Width,
		Height:     info.Height,
		FPS:        fps,
		VoiceTrack: voiceTrack,
	}
	if info.HasAudio {
		encOpts.SourceAudio = videoPath
	}

	enc, err := compositor.NewMP4Encoder(ctx, encOpts)
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	comp, err := compositor.New(
		src,
		enc,
		nil,
		compositor.Options{
			Step:           time.Second / time.Duration(fps),
			MaskOpacity:    opacity,
			BlurRadius:     blur,
			FontHeightFrac: cfg.Export.FontScale,
		},
		logger,
	)
	if err != nil {
		enc.Close()
		return err
	}

	err = comp.Export(ctx, regions, entries, func(percent float64) {
		fmt.Printf("\rExporting... %5.1f%%", percent)
	})
	fmt.Println()
	if err != nil {
		enc.Close()
		return fmt.Errorf("export failed: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	absOutput, _ := filepath.Abs(enc.Path())
	fmt.Printf("Video exported successfully: %s\n", absOutput)
	return nil
}

// parseRegion parses "x,y,w,h" percent coordinates into a clamped region.
func parseRegion(spec string) (region.Region, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return region.Region{}, fmt.Errorf(
			"invalid region %q: expected x,y,w,h",
			spec,
		)
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return region.Region{}, fmt.Errorf(
				"invalid region %q: %w",
				spec, err,
			)
		}
		vals[i] = v
	}

	r := region.Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	r = r.Clamped()
	if r.Width < region.MinDrawSize || r.Height < region.MinDrawSize {
		return region.Region{}, fmt.Errorf(
			"invalid region %q: width and height must be at least %g after clamping",
			spec, region.MinDrawSize,
		)
	}
	return r, nil
}
