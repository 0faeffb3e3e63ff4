package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"floral-studio-server/modules/common/config"
	"floral-studio-server/modules/common/logger"
	"floral-studio-server/modules/floral"
)

var rootCmd = &cobra.Command{
	Use:           "floral-studio",
	Short:         "Floral celebration photo generator (Gemini image model)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger.Init(cfg.AppEnv)
		return nil
	},
	// 서브커맨드 없이 실행하면 서버 시작
	RunE: runServe,
}

// paramFlags - prompts / generate 공통 플래그
var paramFlags floral.Params

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&paramFlags.GiftType, "gift-type", string(floral.GiftBouquet), "bouquet | hug_bucket | gift_box")
	cmd.Flags().IntVar(&paramFlags.Size, "size", floral.DefaultSizeCm, "arrangement size in cm (clamped to 25-70)")
	cmd.Flags().StringVar(&paramFlags.Scene, "scene", "restaurant", "scene key (see /api/floral/options)")
	cmd.Flags().StringVar(&paramFlags.Style, "style", "elegant", "outfit style key")
	cmd.Flags().StringVar(&paramFlags.Composition, "composition", string(floral.CompositionSingle), "single | double_bff | couple | multiple_bff | none")
	cmd.Flags().BoolVar(&paramFlags.ArtisticMode, "artistic", false, "enable the artistic style upgrade")
}

// Execute - main.go 에서 호출되는 진입점
func Execute() {
	rootCmd.AddCommand(serveCmd, promptsCmd, generateCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.L().Error().Err(err).Msg("❌ Command failed")
		os.Exit(1)
	}
}
