package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"floral-studio-server/modules/common/config"
	"floral-studio-server/modules/common/logger"
	"floral-studio-server/modules/common/utils"
	"floral-studio-server/modules/floral"
)

var (
	generateImagePath string
	generateOutDir    string
	generateWebP      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate photos from a local reference image and save them to a directory",
	RunE:  runGenerate,
}

func init() {
	addParamFlags(generateCmd)
	generateCmd.Flags().StringVarP(&generateImagePath, "image", "i", "", "reference image file (required)")
	generateCmd.Flags().StringVarP(&generateOutDir, "out", "o", "output", "directory for generated images")
	generateCmd.Flags().BoolVar(&generateWebP, "webp", false, "save results as WebP")
	_ = generateCmd.MarkFlagRequired("image")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if err := cfg.RequireGemini(); err != nil {
		return err
	}
	if err := paramFlags.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(generateImagePath)
	if err != nil {
		return errors.Wrap(err, "read reference image")
	}
	mimeType, err := utils.ValidateImage(data, "", cfg.MaxUploadBytes())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(generateOutDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	req := paramFlags.ToRequest(floral.ReferenceImage{Data: data, MimeType: mimeType})
	out := cmd.OutOrStdout()

	var saveErr error
	result, err := svc.GenerateWithProgress(cmd.Context(), req, func(index int, img floral.GeneratedImage) {
		path, err := saveImage(generateOutDir, index, img, generateWebP, cfg.WebPQuality)
		if err != nil {
			saveErr = err
			return
		}
		fmt.Fprintf(out, "✅ [%d/%d] %s\n", index+1, floral.PlanSize, path)
	})
	if err != nil {
		if errors.Is(err, floral.ErrQuotaExceeded) {
			return errors.Wrap(err, "quota exceeded, wait 1-2 minutes and retry")
		}
		return err
	}
	if saveErr != nil {
		return saveErr
	}

	if result.Partial() {
		logger.L().Warn().
			Int("generated", len(result.Images)).
			Int("requested", result.Requested).
			Msg("⚠️  Only part of the images were generated, retry later for the full set")
	}
	return nil
}

// saveImage - floral_<n>.<ext> 로 저장
func saveImage(dir string, index int, img floral.GeneratedImage, asWebP bool, quality float32) (string, error) {
	data, ext := img.Data, extensionFor(img.MimeType)
	if asWebP {
		converted, err := utils.ConvertToWebP(img.Data, quality)
		if err != nil {
			return "", err
		}
		data, ext = converted, "webp"
	}
	path := filepath.Join(dir, fmt.Sprintf("floral_%d.%s", index+1, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write image")
	}
	return path, nil
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
