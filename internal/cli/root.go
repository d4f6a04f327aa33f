package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/veilcut/veilcut/internal/config"
	"github.com/veilcut/veilcut/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "veilcut",
	Short: "Region masking and subtitle burn-in for videos",
	Long: `Veilcut masks rectangular regions of a video with blur and a
translucent overlay, and burns subtitles into the masked area.

It can also extract dialogue from a video, translate subtitle files
using AI, and synthesize voice clips for subtitle cueing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// best-effort: a missing .env is fine
		_ = godotenv.Load()

		logger = logging.NewLogger(verbose)

		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default veilcut.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
