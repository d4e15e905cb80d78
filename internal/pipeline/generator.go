package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/concretegen/internal/codec"
	"github.com/MeKo-Tech/concretegen/internal/texstore"
)

// Generator runs the pipeline and persists both outputs, to a folder
// and/or a texture library.
type Generator struct {
	outputDir string
	format    codec.Format
	store     *texstore.Writer
	logger    *slog.Logger
}

// NewGenerator prepares a generator. outputDir may be empty when a
// store is provided, and vice versa; at least one destination is
// required.
func NewGenerator(outputDir string, format codec.Format, store *texstore.Writer, logger *slog.Logger) (*Generator, error) {
	if outputDir == "" && store == nil {
		return nil, fmt.Errorf("no output destination: need an output dir or a texture library")
	}
	return &Generator{
		outputDir: outputDir,
		format:    format,
		store:     store,
		logger:    logger,
	}, nil
}

// Generate synthesizes one texture set and writes the bump and normal
// rasters. Both are encoded before anything is persisted, so no
// destination ever receives a partial set. Returns the written file
// paths (empty when writing only to a library).
func (g *Generator) Generate(ctx context.Context, name string, params Params, force bool) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	var bumpPath, normalPath string
	if g.outputDir != "" {
		bumpPath = filepath.Join(g.outputDir, name+"_bump"+g.format.Ext())
		normalPath = filepath.Join(g.outputDir, name+"_normal"+g.format.Ext())

		if !force && g.store == nil {
			_, errBump := os.Stat(bumpPath)
			_, errNormal := os.Stat(normalPath)
			if errBump == nil && errNormal == nil {
				g.log().Info("Texture set already exists; skipping", "name", name, "bump", bumpPath)
				return bumpPath, normalPath, nil
			}
		}
	}

	g.log().Info("Synthesizing texture set", "name", name, "size", fmt.Sprintf("%dx%d", params.Width, params.Height), "seed", params.Seed)
	result, err := Run(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to synthesize %s: %w", name, err)
	}

	var bumpBuf, normalBuf bytes.Buffer
	if err := codec.EncodeHeightField(&bumpBuf, result.Bump, g.format); err != nil {
		return "", "", fmt.Errorf("failed to encode bump for %s: %w", name, err)
	}
	if err := codec.EncodeNormalMap(&normalBuf, result.Normal, g.format); err != nil {
		return "", "", fmt.Errorf("failed to encode normal map for %s: %w", name, err)
	}

	if g.outputDir != "" {
		if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
			return "", "", fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.WriteFile(bumpPath, bumpBuf.Bytes(), 0o644); err != nil {
			return "", "", fmt.Errorf("failed to write bump: %w", err)
		}
		if err := os.WriteFile(normalPath, normalBuf.Bytes(), 0o644); err != nil {
			os.Remove(bumpPath) // nolint:errcheck // keep outputs paired
			return "", "", fmt.Errorf("failed to write normal map: %w", err)
		}
	}

	if g.store != nil {
		entries := []texstore.Entry{
			{Name: name, Kind: texstore.KindBump, Seed: params.Seed, Width: params.Width, Height: params.Height, Format: string(g.format), Data: bumpBuf.Bytes()},
			{Name: name, Kind: texstore.KindNormal, Seed: params.Seed, Width: params.Width, Height: params.Height, Format: string(g.format), Data: normalBuf.Bytes()},
		}
		for _, e := range entries {
			if err := g.store.WriteTexture(e); err != nil {
				return "", "", fmt.Errorf("failed to store %s/%s: %w", e.Name, e.Kind, err)
			}
		}
	}

	return bumpPath, normalPath, nil
}

func (g *Generator) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}
