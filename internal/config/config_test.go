package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
default_target = "jed-pla22v10"
catalog_dir = "/opt/devices"
log_level = "debug"
parallel = 3
title = "board"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DefaultTarget: "jed-pla22v10",
		CatalogDir:    "/opt/devices",
		LogLevel:      "debug",
		Parallel:      3,
		Title:         "board",
	}, cfg)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, lvl)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key": `colour = "red"`,
		"bad level":   `log_level = "loud"`,
		"negative":    `parallel = -1`,
		"syntax":      `default_target = `,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PLDEXPORT_TARGET":    "jed-pla16v8",
		"PLDEXPORT_LOG_LEVEL": "warn",
		"PLDEXPORT_PARALLEL":  "2",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "jed-pla16v8", cfg.DefaultTarget)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Parallel)
	assert.Empty(t, cfg.CatalogDir)

	env["PLDEXPORT_PARALLEL"] = "many"
	assert.Error(t, Default().ApplyEnv(lookup))
}
