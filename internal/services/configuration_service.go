package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"devion/internal/logger"
	"devion/internal/version"
	"devion/pkg/devtypes"
)

// Config is the persisted Devion configuration.
type Config struct {
	CreatedAt string         `json:"created_at"`
	Version   string         `json:"version"`
	Settings  map[string]any `json:"settings"`
}

// DefaultSettings returns the settings written by init.
func DefaultSettings() map[string]any {
	return map[string]any{
		"auto_update":  true,
		"language":     "en",
		"color_output": true,
	}
}

// DefaultConfig returns a fresh config stamped with now.
func DefaultConfig(now time.Time) *Config {
	return &Config{
		CreatedAt: now.Format(time.RFC3339),
		Version:   version.ConfigSchemaVersion,
		Settings:  DefaultSettings(),
	}
}

// Document converts the config into the generic form stored on disk.
func (c *Config) Document() map[string]any {
	settings := make(map[string]any, len(c.Settings))
	for k, v := range c.Settings {
		settings[k] = v
	}
	return map[string]any{
		"created_at": c.CreatedAt,
		"version":    c.Version,
		"settings":   settings,
	}
}

// ConfigService reads and writes the config file at a fixed path.
// Documents are handled as generic maps so unknown fields survive a rewrite.
type ConfigService struct {
	path string
	now  func() time.Time
}

// NewConfigService creates a ConfigService for path.
func NewConfigService(path string, now func() time.Time) *ConfigService {
	if now == nil {
		now = time.Now
	}
	return &ConfigService{path: path, now: now}
}

// Name returns the service name "configuration".
func (c *ConfigService) Name() string {
	return "configuration"
}

// Path returns the config file path.
func (c *ConfigService) Path() string {
	return c.path
}

// Dir returns the directory holding the config file.
func (c *ConfigService) Dir() string {
	return filepath.Dir(c.path)
}

// Exists reports whether the config file is present.
func (c *ConfigService) Exists() (bool, error) {
	info, err := os.Stat(c.path)
	switch {
	case err == nil:
		if info.IsDir() {
			return false, devtypes.IOFailuref("config path %s is a directory", c.path)
		}
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, devtypes.WrapIO(err, "failed to stat %s", c.path)
	}
}

// LoadDocument reads the config file as a generic JSON object.
// A missing file is a NotInitialized error.
func (c *ConfigService) LoadDocument() (map[string]any, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, devtypes.NotInitializedf("config file not found at %s, run 'devion init' first", c.path)
	}
	if err != nil {
		return nil, devtypes.WrapIO(err, "failed to read %s", c.path)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, devtypes.WrapIO(err, "config file %s is not valid JSON", c.path)
	}
	if doc == nil {
		return nil, devtypes.IOFailuref("config file %s does not hold a JSON object", c.path)
	}
	return doc, nil
}

// Settings returns the settings object of doc.
func Settings(doc map[string]any) (map[string]any, error) {
	raw, ok := doc["settings"]
	if !ok {
		return nil, devtypes.IOFailuref("config file has no settings object")
	}
	settings, ok := raw.(map[string]any)
	if !ok {
		return nil, devtypes.IOFailuref("config settings must be a JSON object, got %T", raw)
	}
	return settings, nil
}

// SaveDocument writes doc as pretty-printed JSON, creating the directory
// if needed. The file is replaced atomically.
func (c *ConfigService) SaveDocument(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		return devtypes.WrapIO(err, "failed to create %s", c.Dir())
	}

	tmp, err := os.CreateTemp(c.Dir(), ".config-*.json")
	if err != nil {
		return devtypes.WrapIO(err, "failed to create temp file in %s", c.Dir())
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return devtypes.WrapIO(err, "failed to write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return devtypes.WrapIO(err, "failed to close %s", tmpName)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return devtypes.WrapIO(err, "failed to replace %s", c.path)
	}

	logger.ServiceOperation(c.Name(), "save", "path", c.path)
	return nil
}

// WriteDefaults unconditionally writes a default config.
func (c *ConfigService) WriteDefaults() (*Config, error) {
	cfg := DefaultConfig(c.now())
	if err := c.SaveDocument(cfg.Document()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnsureDir creates the config directory. It reports whether it was created.
func (c *ConfigService) EnsureDir() (bool, error) {
	info, err := os.Stat(c.Dir())
	if err == nil {
		if !info.IsDir() {
			return false, devtypes.IOFailuref("%s exists but is not a directory", c.Dir())
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, devtypes.WrapIO(err, "failed to stat %s", c.Dir())
	}
	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		return false, devtypes.WrapIO(err, "failed to create %s", c.Dir())
	}
	return true, nil
}

// EnsureExists writes a default config only when none exists.
// It reports whether a new file was created.
func (c *ConfigService) EnsureExists() (bool, error) {
	exists, err := c.Exists()
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := c.WriteDefaults(); err != nil {
		return false, err
	}
	return true, nil
}

// AddMissingDefaults fills default setting keys absent from doc without
// touching existing values. It returns the keys it added.
func AddMissingDefaults(doc map[string]any) ([]string, error) {
	settings, err := Settings(doc)
	if err != nil {
		return nil, err
	}
	var added []string
	defaults := DefaultSettings()
	for _, key := range []string{"auto_update", "language", "color_output"} {
		if _, ok := settings[key]; !ok {
			settings[key] = defaults[key]
			added = append(added, key)
		}
	}
	return added, nil
}
