// Package texstore provides a SQLite-backed library of generated
// texture sets, so batch runs can be collected into a single portable
// file instead of a folder of rasters.
package texstore

import "fmt"

// Kinds of textures stored per set.
const (
	KindBump   = "bump"
	KindNormal = "normal"
)

// Metadata describes a texture library.
type Metadata struct {
	Name        string // human-readable library identifier
	Description string // free-form description
	Generator   string // producing tool, e.g. "concretegen"
	Version     string // producing tool version
	Seed        int64  // base seed of the batch, 0 if mixed
	Width       int    // texture width in pixels, 0 if mixed
	Height      int    // texture height in pixels, 0 if mixed
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Generator != "" {
		result["generator"] = m.Generator
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Seed != 0 {
		result["seed"] = fmt.Sprintf("%d", m.Seed)
	}
	if m.Width > 0 {
		result["width"] = fmt.Sprintf("%d", m.Width)
	}
	if m.Height > 0 {
		result["height"] = fmt.Sprintf("%d", m.Height)
	}
	return result
}

// Entry is one stored texture.
type Entry struct {
	Name   string // texture-set name, e.g. "concrete_1337"
	Kind   string // KindBump or KindNormal
	Seed   int64
	Width  int
	Height int
	Format string // raster format of Data, e.g. "png"
	Data   []byte // raster bytes (gzip-compressed at rest)
}
