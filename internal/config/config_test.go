package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesOriginalConstants(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4, cfg.Pipeline.WorkerMultiplier)
	assert.Equal(t, 1024*64, cfg.Pipeline.POIChannelCapacity)
	assert.Equal(t, 1000, cfg.Pipeline.ReadRefreshEvery)
	assert.Equal(t, 5, cfg.Pipeline.AdminRetryAttempts)
	assert.Equal(t, 10000, cfg.Pipeline.ProgressEvery)
	assert.Equal(t, 5000, cfg.Admin.CacheBufferSize)
	assert.Equal(t, 15, cfg.Admin.MaxCellLevel)
	assert.Equal(t, 512*1024, cfg.Remote.ChunkSize)

	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.kdl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysKDLDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geocoder.kdl")
	content := []byte(`
version 1
pipeline {
    worker_multiplier 8
}
remote {
    chunk_size 1048576
}
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Pipeline.WorkerMultiplier)
	assert.Equal(t, 1048576, cfg.Remote.ChunkSize)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5000, cfg.Admin.CacheBufferSize)
}

func TestValidateAggregatesEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.WorkerMultiplier = 0
	cfg.Pipeline.POIChannelCapacity = -1
	cfg.Admin.MaxCellLevel = 99

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker_multiplier")
	assert.Contains(t, err.Error(), "poi_channel_capacity")
	assert.Contains(t, err.Error(), "max_cell_level")
}
