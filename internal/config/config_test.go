package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webdir.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `root = "/srv"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv", cfg.Root)
	require.True(t, cfg.Index)
	require.Equal(t, "127.0.0.1:8080", cfg.Listen.Address)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
root = "/srv"
index = false

[listen]
address = "0.0.0.0:9000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.Index)
	require.Equal(t, "0.0.0.0:9000", cfg.Listen.Address)
}

func TestLoadRequiresRoot(t *testing.T) {
	path := writeConfig(t, `index = true`)
	_, err := Load(path)
	require.Error(t, err)
}
