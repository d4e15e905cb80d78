package texstore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	_ "modernc.org/sqlite" // SQLite driver
)

// Reader reads textures from a library database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a texture library for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='textures'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain a textures table")
	}

	return &Reader{db: db, path: path}, nil
}

// List returns all stored textures without their raster data, ordered
// by name then kind.
func (r *Reader) List() ([]Entry, error) {
	rows, err := r.db.Query("SELECT name, kind, seed, width, height, format FROM textures ORDER BY name, kind")
	if err != nil {
		return nil, fmt.Errorf("failed to query textures: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Kind, &e.Seed, &e.Width, &e.Height, &e.Format); err != nil {
			return nil, fmt.Errorf("failed to scan texture row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating textures: %w", err)
	}
	return entries, nil
}

// ReadTexture returns a stored texture with decompressed raster data.
func (r *Reader) ReadTexture(name, kind string) (Entry, error) {
	var (
		e          Entry
		compressed []byte
	)
	err := r.db.QueryRow(
		"SELECT name, kind, seed, width, height, format, data FROM textures WHERE name=? AND kind=?",
		name, kind,
	).Scan(&e.Name, &e.Kind, &e.Seed, &e.Width, &e.Height, &e.Format, &compressed)

	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("texture not found: %s/%s", name, kind)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query texture: %w", err)
	}

	e.Data, err = gzipDecompress(compressed)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to decompress texture %s/%s: %w", name, kind, err)
	}
	return e, nil
}

// Metadata reads the library metadata.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	meta := Metadata{
		Name:        metaMap["name"],
		Description: metaMap["description"],
		Generator:   metaMap["generator"],
		Version:     metaMap["version"],
	}
	if v, ok := metaMap["seed"]; ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			meta.Seed = i
		}
	}
	if v, ok := metaMap["width"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.Width = i
		}
	}
	if v, ok := metaMap["height"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.Height = i
		}
	}
	return meta, nil
}

// Close closes the database.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
