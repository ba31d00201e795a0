// Package config loads and validates the geocoder's runtime
// configuration from a KDL document.
package config

import (
	"fmt"
	"os"

	kdl "github.com/sblinch/kdl-go"

	geoerrors "github.com/standardbeagle/geocoder/internal/errors"
)

// Config is the root configuration structure.
type Config struct {
	Version     int         `kdl:"version"`
	Index       Index       `kdl:"index"`
	Pipeline    Pipeline    `kdl:"pipeline"`
	Admin       Admin       `kdl:"admin"`
	Remote      Remote      `kdl:"remote"`
	Scoring     Scoring     `kdl:"scoring"`
}

// Index describes where the full-text index and its supporting FST
// dictionaries live on disk.
type Index struct {
	Path              string `kdl:"path"`
	DictionaryDir     string `kdl:"dictionary_dir"`
	SubstitutionDir   string `kdl:"substitution_dir"`
}

// Pipeline controls the import pipeline's concurrency and batching.
type Pipeline struct {
	WorkerMultiplier   int `kdl:"worker_multiplier"`
	POIChannelCapacity int `kdl:"poi_channel_capacity"`
	ReadRefreshEvery   int `kdl:"read_refresh_every"`
	AdminRetryAttempts int `kdl:"admin_retry_attempts"`
	ProgressEvery      int `kdl:"progress_every"`
}

// Admin controls the administrative-area resolver and its cache.
type Admin struct {
	CachePath        string `kdl:"cache_path"`
	CacheBufferSize  int    `kdl:"cache_buffer_size"`
	PIPEndpoint      string `kdl:"pip_endpoint"`
	WhosOnFirstDB    string `kdl:"whosonfirst_db"`
	MaxCellLevel     int    `kdl:"max_cell_level"`
}

// Remote controls the HTTP-backed remote-paged directory.
type Remote struct {
	BaseURL   string `kdl:"base_url"`
	ChunkSize int    `kdl:"chunk_size"`
	CacheSize int    `kdl:"cache_size"`
}

// Scoring holds scoring-rule settings. EnableAll is loaded and
// defaulted to true, but the query scorer does not read it: every rule
// is always applied, and there is no per-rule toggle.
type Scoring struct {
	EnableAll bool `kdl:"enable_all"`
}

// Default returns a Config populated with the same defaults the
// original implementation hardcodes.
func Default() *Config {
	return &Config{
		Version: 1,
		Index: Index{
			Path:            "./index",
			DictionaryDir:   "./dictionaries",
			SubstitutionDir: "./dictionaries",
		},
		Pipeline: Pipeline{
			WorkerMultiplier:   4,
			POIChannelCapacity: 1024 * 64,
			ReadRefreshEvery:   1000,
			AdminRetryAttempts: 5,
			ProgressEvery:      10000,
		},
		Admin: Admin{
			CachePath:       "./admin_cache.db",
			CacheBufferSize: 5000,
			MaxCellLevel:    15,
		},
		Remote: Remote{
			ChunkSize: 512 * 1024,
			CacheSize: 256,
		},
		Scoring: Scoring{EnableAll: true},
	}
}

// Load reads a KDL configuration document from path, overlaying it onto
// Default(). A missing file is not an error: defaults are used as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, geoerrors.NewConfigError(path, fmt.Sprintf("failed to read config file: %v", err))
	}

	if err := kdl.Unmarshal(content, cfg); err != nil {
		return nil, geoerrors.NewConfigError(path, fmt.Sprintf("failed to parse KDL: %v", err))
	}

	return cfg, nil
}

// Validate checks the configuration for out-of-range or missing
// required values, aggregating every problem found rather than failing
// on the first one.
func (c *Config) Validate() error {
	var multi geoerrors.MultiError

	if c.Pipeline.WorkerMultiplier <= 0 {
		multi.Add(geoerrors.NewConfigError("pipeline.worker_multiplier", "must be positive"))
	}
	if c.Pipeline.POIChannelCapacity <= 0 {
		multi.Add(geoerrors.NewConfigError("pipeline.poi_channel_capacity", "must be positive"))
	}
	if c.Pipeline.ReadRefreshEvery <= 0 {
		multi.Add(geoerrors.NewConfigError("pipeline.read_refresh_every", "must be positive"))
	}
	if c.Pipeline.AdminRetryAttempts < 0 {
		multi.Add(geoerrors.NewConfigError("pipeline.admin_retry_attempts", "must be >= 0"))
	}
	if c.Admin.CacheBufferSize <= 0 {
		multi.Add(geoerrors.NewConfigError("admin.cache_buffer_size", "must be positive"))
	}
	if c.Admin.MaxCellLevel < 0 || c.Admin.MaxCellLevel > 30 {
		multi.Add(geoerrors.NewConfigError("admin.max_cell_level", "must be between 0 and 30"))
	}
	if c.Remote.ChunkSize <= 0 {
		multi.Add(geoerrors.NewConfigError("remote.chunk_size", "must be positive"))
	}

	return multi.ErrorOrNil()
}
