package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devion/pkg/devtypes"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func newTestConfigService(t *testing.T) *ConfigService {
	t.Helper()
	return NewConfigService(filepath.Join(t.TempDir(), ".devion", "config.json"), fixedNow)
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestConfigService_WriteDefaults(t *testing.T) {
	svc := newTestConfigService(t)

	cfg, err := svc.WriteDefaults()
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z", cfg.CreatedAt)

	doc := readJSON(t, svc.Path())
	assert.Equal(t, "1.0.0", doc["version"])
	assert.Equal(t, "2026-01-02T03:04:05Z", doc["created_at"])
	assert.Equal(t, map[string]any{
		"auto_update":  true,
		"language":     "en",
		"color_output": true,
	}, doc["settings"])

	raw, err := os.ReadFile(svc.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"settings\"", "config is pretty printed")
}

func TestConfigService_LoadDocument_Missing(t *testing.T) {
	svc := newTestConfigService(t)

	_, err := svc.LoadDocument()
	require.Error(t, err)
	assert.Equal(t, devtypes.KindNotInitialized, devtypes.KindOf(err))
	assert.Contains(t, err.Error(), "devion init")
}

func TestConfigService_LoadDocument_Invalid(t *testing.T) {
	svc := newTestConfigService(t)
	require.NoError(t, os.MkdirAll(svc.Dir(), 0o755))
	require.NoError(t, os.WriteFile(svc.Path(), []byte("{not json"), 0o644))

	_, err := svc.LoadDocument()
	require.Error(t, err)
	assert.Equal(t, devtypes.KindIOFailure, devtypes.KindOf(err))
}

func TestConfigService_SaveDocument_PreservesUnknownFields(t *testing.T) {
	svc := newTestConfigService(t)
	doc := DefaultConfig(fixedNow()).Document()
	doc["profile"] = "work"
	require.NoError(t, svc.SaveDocument(doc))

	loaded, err := svc.LoadDocument()
	require.NoError(t, err)
	assert.Equal(t, "work", loaded["profile"])

	entries, err := os.ReadDir(svc.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestConfigService_EnsureExists(t *testing.T) {
	svc := newTestConfigService(t)

	created, err := svc.EnsureExists()
	require.NoError(t, err)
	assert.True(t, created)

	doc := readJSON(t, svc.Path())
	settings := doc["settings"].(map[string]any)
	settings["language"] = "fa"
	require.NoError(t, svc.SaveDocument(doc))

	created, err = svc.EnsureExists()
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "fa", readJSON(t, svc.Path())["settings"].(map[string]any)["language"])
}

func TestConfigService_EnsureDir(t *testing.T) {
	svc := newTestConfigService(t)

	created, err := svc.EnsureDir()
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureDir()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestConfigService_Exists_Directory(t *testing.T) {
	svc := newTestConfigService(t)
	require.NoError(t, os.MkdirAll(svc.Path(), 0o755))

	_, err := svc.Exists()
	assert.Equal(t, devtypes.KindIOFailure, devtypes.KindOf(err))
}

func TestSettings(t *testing.T) {
	_, err := Settings(map[string]any{})
	assert.Error(t, err)

	_, err = Settings(map[string]any{"settings": []any{}})
	assert.Error(t, err)

	s, err := Settings(map[string]any{"settings": map[string]any{"a": true}})
	require.NoError(t, err)
	assert.Equal(t, true, s["a"])
}

func TestAddMissingDefaults(t *testing.T) {
	doc := map[string]any{"settings": map[string]any{"language": "fa"}}

	added, err := AddMissingDefaults(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"auto_update", "color_output"}, added)

	settings := doc["settings"].(map[string]any)
	assert.Equal(t, "fa", settings["language"])
	assert.Equal(t, true, settings["auto_update"])

	added, err = AddMissingDefaults(doc)
	require.NoError(t, err)
	assert.Empty(t, added)
}
