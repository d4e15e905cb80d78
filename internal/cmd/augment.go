package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/concretegen/internal/blend"
	"github.com/MeKo-Tech/concretegen/internal/codec"
	"github.com/MeKo-Tech/concretegen/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var augmentCmd = &cobra.Command{
	Use:   "augment",
	Short: "Augment an existing bump image",
	Long: `Augment an existing bump image: optionally repair its tiling seams,
layer procedural micro-detail on top, and derive a matching normal map.

The input is any PNG or TIFF image; it is read as luminance and
resampled to the requested output size.`,
	RunE: runAugment,
}

func init() {
	rootCmd.AddCommand(augmentCmd)

	augmentCmd.Flags().StringP("input", "i", "", "Input bump image (required)")
	augmentCmd.Flags().String("name", "", "Base name for output files (default: input name)")
	augmentCmd.Flags().Int("width", 0, "Output width in pixels (default: input width)")
	augmentCmd.Flags().Int("height", 0, "Output height in pixels (default: input height)")
	augmentCmd.Flags().Int64("seed", 1337, "Deterministic seed for the detail layer")

	// Seam repair
	augmentCmd.Flags().Bool("seamless", false, "Repair tiling seams with mirror blending")
	augmentCmd.Flags().Int("margin", 32, "Seam blend margin in pixels")

	// Detail and normal map
	augmentCmd.Flags().Float64("detail-strength", 0.25, "Strength of the micro-detail layer")
	augmentCmd.Flags().String("blend", "additive", "Detail blend mode (additive, multiplicative)")
	augmentCmd.Flags().Float64("normal-strength", 3.0, "Height-to-slope strength of the normal map")
	augmentCmd.Flags().Bool("invert-y", true, "Flip the green channel (DirectX-style normals)")

	augmentCmd.Flags().Bool("force", false, "Force regeneration even if outputs exist")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"augment.input", "input"},
		{"augment.name", "name"},
		{"augment.width", "width"},
		{"augment.height", "height"},
		{"augment.seed", "seed"},
		{"augment.seamless", "seamless"},
		{"augment.margin", "margin"},
		{"augment.detail_strength", "detail-strength"},
		{"augment.blend", "blend"},
		{"augment.normal_strength", "normal-strength"},
		{"augment.invert_y", "invert-y"},
		{"augment.force", "force"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, augmentCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runAugment(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	inputPath := viper.GetString("augment.input")
	if inputPath == "" {
		return fmt.Errorf("--input is required")
	}

	format, err := codec.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	mode, err := blend.ParseMode(viper.GetString("augment.blend"))
	if err != nil {
		return err
	}

	name := viper.GetString("augment.name")
	if name == "" {
		base := filepath.Base(inputPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input image: %w", err)
	}

	width := viper.GetInt("augment.width")
	height := viper.GetInt("augment.height")
	if width <= 0 || height <= 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to probe input image: %w", err)
		}
		if width <= 0 {
			width = cfg.Width
		}
		if height <= 0 {
			height = cfg.Height
		}
	}

	source, err := codec.DecodeHeightField(bytes.NewReader(data), width, height)
	if err != nil {
		return fmt.Errorf("failed to decode input image: %w", err)
	}

	params := pipeline.DefaultParams(width, height, viper.GetInt64("augment.seed"))
	params.Source = source
	params.StitchSource = viper.GetBool("augment.seamless")
	params.SeamMargin = viper.GetInt("augment.margin")
	params.DetailStrength = viper.GetFloat64("augment.detail_strength")
	params.BlendMode = mode
	params.Normal.Strength = viper.GetFloat64("augment.normal_strength")
	params.Normal.InvertY = viper.GetBool("augment.invert_y")

	logger.Info("Augmenting bump image",
		"input", inputPath,
		"name", name,
		"size", fmt.Sprintf("%dx%d", width, height),
		"seamless", params.StitchSource,
		"detail_strength", params.DetailStrength,
	)

	gen, err := pipeline.NewGenerator(viper.GetString("output-dir"), format, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to init generator: %w", err)
	}

	bumpPath, normalPath, err := gen.Generate(context.Background(), name, params, viper.GetBool("augment.force"))
	if err != nil {
		return fmt.Errorf("failed to augment texture: %w", err)
	}

	logger.Info("Texture set generated", "bump", bumpPath, "normal", normalPath)
	return nil
}
