package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/MeKo-Tech/concretegen/internal/blend"
	"github.com/MeKo-Tech/concretegen/internal/codec"
	"github.com/MeKo-Tech/concretegen/internal/pipeline"
	"github.com/MeKo-Tech/concretegen/internal/texstore"
	"github.com/MeKo-Tech/concretegen/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize concrete texture sets",
	Long: `Synthesize seamless concrete bump maps and their normal maps.

A single run produces one texture set; --count produces a numbered
series with per-set derived seeds, generated in parallel.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	// Output shape
	generateCmd.Flags().Int("width", 1024, "Texture width in pixels")
	generateCmd.Flags().Int("height", 1024, "Texture height in pixels")
	generateCmd.Flags().String("name", "concrete", "Base name for output files")
	generateCmd.Flags().Int64("seed", 1337, "Deterministic seed for synthesis")

	// Batch generation
	generateCmd.Flags().Int("count", 1, "Number of texture sets to generate")
	generateCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	generateCmd.Flags().Bool("progress", true, "Show progress bar during batch generation")
	generateCmd.Flags().Bool("allow-failures", false, "Continue generation even if some texture sets fail")

	// Surface composition
	generateCmd.Flags().Float64("scale", 5.0, "Feature scale multiplier")
	generateCmd.Flags().Float64("base-depth", 0.55, "Weight of the low-frequency undulation")
	generateCmd.Flags().Float64("grain", 0.35, "Weight of the fine aggregate grain")
	generateCmd.Flags().Float64("pit-density", 0.02, "Fraction of surface dug out as pits (0..1)")
	generateCmd.Flags().Float64("pit-depth", 0.20, "Depth of surface pits")
	generateCmd.Flags().Float64("stain", 0.2, "Strength of the broad stain layer")
	generateCmd.Flags().Float64("trowel", 0.0, "Trowel flattening strength (0..1)")
	generateCmd.Flags().Int("blur-radius", 1, "Final smoothing radius in pixels")
	generateCmd.Flags().Int("blur-passes", 1, "Final smoothing passes")

	// Detail and normal map
	generateCmd.Flags().Float64("detail-strength", 0.25, "Strength of the micro-detail layer")
	generateCmd.Flags().String("blend", "additive", "Detail blend mode (additive, multiplicative)")
	generateCmd.Flags().Float64("normal-strength", 3.0, "Height-to-slope strength of the normal map")
	generateCmd.Flags().Bool("invert-y", true, "Flip the green channel (DirectX-style normals)")

	// Destinations
	generateCmd.Flags().String("library", "", "Also write texture sets to a SQLite library at this path")
	generateCmd.Flags().Bool("force", false, "Force regeneration even if outputs exist")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"generate.width", "width"},
		{"generate.height", "height"},
		{"generate.name", "name"},
		{"generate.seed", "seed"},
		{"generate.count", "count"},
		{"generate.workers", "workers"},
		{"generate.progress", "progress"},
		{"generate.allow_failures", "allow-failures"},
		{"generate.scale", "scale"},
		{"generate.base_depth", "base-depth"},
		{"generate.grain", "grain"},
		{"generate.pit_density", "pit-density"},
		{"generate.pit_depth", "pit-depth"},
		{"generate.stain", "stain"},
		{"generate.trowel", "trowel"},
		{"generate.blur_radius", "blur-radius"},
		{"generate.blur_passes", "blur-passes"},
		{"generate.detail_strength", "detail-strength"},
		{"generate.blend", "blend"},
		{"generate.normal_strength", "normal-strength"},
		{"generate.invert_y", "invert-y"},
		{"generate.library", "library"},
		{"generate.force", "force"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, generateCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// paramsFromConfig assembles pipeline parameters from the bound
// generate.* config keys.
func paramsFromConfig() (pipeline.Params, error) {
	width := viper.GetInt("generate.width")
	height := viper.GetInt("generate.height")
	seed := viper.GetInt64("generate.seed")

	params := pipeline.DefaultParams(width, height, seed)
	params.Base.Scale = viper.GetFloat64("generate.scale")
	params.Base.BaseDepth = viper.GetFloat64("generate.base_depth")
	params.Base.GrainStrength = viper.GetFloat64("generate.grain")
	params.Base.PitDensity = viper.GetFloat64("generate.pit_density")
	params.Base.PitDepth = viper.GetFloat64("generate.pit_depth")
	params.Base.StainStrength = viper.GetFloat64("generate.stain")
	params.Base.TrowelStrength = viper.GetFloat64("generate.trowel")
	params.Base.BlurRadius = viper.GetInt("generate.blur_radius")
	params.Base.BlurPasses = viper.GetInt("generate.blur_passes")
	params.DetailStrength = viper.GetFloat64("generate.detail_strength")
	params.Normal.Strength = viper.GetFloat64("generate.normal_strength")
	params.Normal.InvertY = viper.GetBool("generate.invert_y")

	mode, err := blend.ParseMode(viper.GetString("generate.blend"))
	if err != nil {
		return pipeline.Params{}, err
	}
	params.BlendMode = mode

	if params.Base.TrowelStrength < 0 || params.Base.TrowelStrength > 1 {
		return pipeline.Params{}, fmt.Errorf("trowel must be within [0,1]")
	}
	if params.Base.PitDensity < 0 || params.Base.PitDensity > 1 {
		return pipeline.Params{}, fmt.Errorf("pit-density must be within [0,1]")
	}

	return params, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	params, err := paramsFromConfig()
	if err != nil {
		return err
	}

	format, err := codec.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	name := viper.GetString("generate.name")
	count := viper.GetInt("generate.count")
	workers := viper.GetInt("generate.workers")
	showProgress := viper.GetBool("generate.progress")
	allowFailures := viper.GetBool("generate.allow_failures")
	force := viper.GetBool("generate.force")
	outputDir := viper.GetString("output-dir")
	libraryPath := viper.GetString("generate.library")

	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	var store *texstore.Writer
	if libraryPath != "" {
		store, err = texstore.NewWriter(libraryPath, texstore.Metadata{
			Name:        name,
			Description: "Procedural seamless concrete textures",
			Generator:   "concretegen",
			Version:     "1.0",
			Seed:        params.Seed,
			Width:       params.Width,
			Height:      params.Height,
		})
		if err != nil {
			return fmt.Errorf("failed to open texture library: %w", err)
		}
		defer store.Close()
	}

	gen, err := pipeline.NewGenerator(outputDir, format, store, logger)
	if err != nil {
		return fmt.Errorf("failed to init generator: %w", err)
	}

	if count == 1 {
		logger.Info("Starting texture generation",
			"name", name,
			"size", fmt.Sprintf("%dx%d", params.Width, params.Height),
			"seed", params.Seed,
			"output_dir", outputDir,
			"format", string(format),
		)

		bumpPath, normalPath, err := gen.Generate(context.Background(), name, params, force)
		if err != nil {
			return fmt.Errorf("failed to generate texture set: %w", err)
		}
		logger.Info("Texture set generated", "bump", bumpPath, "normal", normalPath)
		return flushLibrary(store, libraryPath)
	}

	return runBatchGenerate(gen, store, libraryPath, name, params, count, workers, showProgress, force, allowFailures)
}

// runBatchGenerate produces a numbered texture series. Each set gets a
// seed derived from the base seed so the series is reproducible while
// every set differs.
func runBatchGenerate(gen *pipeline.Generator, store *texstore.Writer, libraryPath, name string, params pipeline.Params, count, workers int, showProgress, force, allowFailures bool) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger.Info("Starting batch texture generation",
		"name", name,
		"count", count,
		"workers", workers,
		"seed", params.Seed,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received interrupt signal, cancelling...")
		cancel()
	}()

	tasks := make([]worker.Task, 0, count)
	for i := 0; i < count; i++ {
		p := params
		p.Seed = params.Seed + int64(i)*1000
		tasks = append(tasks, worker.Task{
			Name:   fmt.Sprintf("%s_%03d", name, i+1),
			Params: p,
			Force:  force,
		})
	}

	progress := worker.NewProgress(len(tasks), showProgress)

	pool := worker.New(worker.Config{
		Workers:    workers,
		Generator:  gen,
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Texture generation failed", "name", r.Task.Name, "error", r.Err)
		}
	}

	logger.Info(progress.Summary())

	if failedCount > 0 && !allowFailures {
		return fmt.Errorf("%d texture sets failed to generate", failedCount)
	}
	if failedCount > 0 {
		logger.Warn("Some texture sets failed, continuing due to --allow-failures", "failed_count", failedCount)
	}

	return flushLibrary(store, libraryPath)
}

func flushLibrary(store *texstore.Writer, path string) error {
	if store == nil {
		return nil
	}
	if err := store.Flush(); err != nil {
		return fmt.Errorf("failed to flush texture library: %w", err)
	}
	logger.Info("Texture library updated", "path", path)
	return nil
}
