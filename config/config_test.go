package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
http:
  port: 9090
  allowed_origins: ["http://localhost:3000"]
model:
  path: /srv/models/rf.json
  cache_size: 256
log:
  level: debug
  file: /var/log/predictor.log
  max_backups: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Http.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Http.AllowedOrigins)
	assert.Equal(t, "/srv/models/rf.json", cfg.Model.Path)
	assert.Equal(t, 256, cfg.Model.CacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.Equal(t, int64(1<<20), cfg.Http.MaxBodyBytes)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 8080, cfg.Http.Port)
	assert.Equal(t, filepath.Join("models", "random_forest_model.json"), cfg.Model.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "model:\n  path: from-file.json\n")
	t.Setenv("PREDICTOR_MODEL_PATH", "from-env.json")
	t.Setenv("PREDICTOR_HTTP_PORT", "7000")
	t.Setenv("PREDICTOR_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	want, err := filepath.Abs("from-env.json")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Model.Path)
	assert.Equal(t, 7000, cfg.Http.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvModelPathUsesWorkingDirectory(t *testing.T) {
	// The config file lives elsewhere; the env path must not follow it.
	path := writeConfig(t, t.TempDir(), "model:\n  path: from-file.json\n")
	t.Setenv("PREDICTOR_MODEL_PATH", filepath.Join("models", "x.json"))

	cfg, err := Load(path)
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "models", "x.json"), cfg.Model.Path)
	assert.True(t, filepath.IsAbs(cfg.Model.Path))

	t.Setenv("PREDICTOR_MODEL_PATH", "")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file.json", cfg.Model.Path)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, t.TempDir(), "http: [unclosed"))
		assert.Error(t, err)
	})
	t.Run("bad port env", func(t *testing.T) {
		t.Setenv("PREDICTOR_HTTP_PORT", "eighty")
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
	t.Run("negative cache", func(t *testing.T) {
		_, err := Load(writeConfig(t, t.TempDir(), "model:\n  cache_size: -1\n"))
		assert.ErrorContains(t, err, "cache_size")
	})
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 16)
	require.NoError(t, Watch(ctx, path, func(cfg *Config) {
		select {
		case changes <- cfg:
		default:
		}
	}, nil))

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Log.Level == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}
