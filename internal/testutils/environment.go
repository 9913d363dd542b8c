package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"devion/internal/services"
)

// NewEnvironment returns an Environment rooted in temporary directories with
// a fixed clock and the given prober. A nil prober means every status tool
// is installed.
func NewEnvironment(t testing.TB, prober *FakeProber) *services.Environment {
	t.Helper()
	if prober == nil {
		prober = InstalledTools()
	}
	home := t.TempDir()
	return &services.Environment{
		ConfigPath:     services.DefaultConfigPath(home),
		HomeDir:        home,
		WorkDir:        t.TempDir(),
		ProbeTimeout:   time.Second,
		InstallTimeout: time.Second,
		Now:            FixedClock(),
		Prober:         prober,
	}
}

// WriteConfig stores doc as the environment's config file.
func WriteConfig(t testing.TB, env *services.Environment, doc map[string]any) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.ConfigPath), 0o755))
	require.NoError(t, os.WriteFile(env.ConfigPath, data, 0o644))
}

// ReadConfig loads the environment's config file.
func ReadConfig(t testing.TB, env *services.Environment) map[string]any {
	t.Helper()
	data, err := os.ReadFile(env.ConfigPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

// ReadRaw returns the bytes of path.
func ReadRaw(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// WriteFile creates path with content, making parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
