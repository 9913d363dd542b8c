// Package services provides the filesystem, subprocess and configuration
// operations used by Devion command modules.
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults for an Environment.
const (
	DefaultProbeTimeout   = 5 * time.Second
	DefaultInstallTimeout = 10 * time.Minute
	ConfigDirName         = ".devion"
	ConfigFileName        = "config.json"
)

// Environment carries every external resource a command module touches.
// Modules receive it explicitly instead of reaching for global paths.
type Environment struct {
	// ConfigPath is the persisted config file.
	ConfigPath string
	// HomeDir is the user's home directory.
	HomeDir string
	// WorkDir is the project directory commands such as deploy operate on.
	WorkDir string
	// ProbeTimeout bounds each tool version query.
	ProbeTimeout time.Duration
	// InstallTimeout bounds each package install run by setup.
	InstallTimeout time.Duration
	// Now returns the current time.
	Now func() time.Time
	// Prober locates and runs external tools.
	Prober ToolProber
}

// EnvironmentOptions overrides parts of the default environment.
// Zero values fall back to the process defaults.
type EnvironmentOptions struct {
	ConfigPath   string
	HomeDir      string
	WorkDir      string
	ProbeTimeout time.Duration
}

// NewEnvironment resolves an Environment for the current process.
func NewEnvironment(opts EnvironmentOptions) (*Environment, error) {
	home := opts.HomeDir
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not resolve home directory: %w", err)
		}
		home = h
	}

	work := opts.WorkDir
	if work == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not resolve working directory: %w", err)
		}
		work = wd
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath(home)
	}

	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	return &Environment{
		ConfigPath:     configPath,
		HomeDir:        home,
		WorkDir:        work,
		ProbeTimeout:   timeout,
		InstallTimeout: DefaultInstallTimeout,
		Now:            time.Now,
		Prober:         NewExecProber(),
	}, nil
}

// DefaultConfigPath returns ~/.devion/config.json for the given home.
func DefaultConfigPath(home string) string {
	return filepath.Join(home, ConfigDirName, ConfigFileName)
}

// ConfigDir is the directory holding the config file.
func (e *Environment) ConfigDir() string {
	return filepath.Dir(e.ConfigPath)
}

// Config returns a store bound to this environment's config file.
func (e *Environment) Config() *ConfigService {
	return NewConfigService(e.ConfigPath, e.now)
}

// Tools returns the tool service bound to this environment's prober.
func (e *Environment) Tools() *ToolService {
	return NewToolService(e.Prober, e.ProbeTimeout)
}

// Project returns the project inspector.
func (e *Environment) Project() *ProjectService {
	return NewProjectService(e.now)
}

// Timestamp formats the current time as ISO-8601.
func (e *Environment) Timestamp() string {
	return e.now().Format(time.RFC3339)
}

// ResolvePath makes p absolute relative to WorkDir.
func (e *Environment) ResolvePath(p string) string {
	if p == "" {
		return e.WorkDir
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(e.WorkDir, p)
}

func (e *Environment) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
