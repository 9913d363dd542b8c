package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"devion/internal/logger"
	"devion/internal/version"
)

// ToolProber locates executables and runs them. The default implementation
// uses the process search path; tests substitute a fake.
type ToolProber interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, path string, args ...string) (string, error)
}

// ExecProber runs real subprocesses.
type ExecProber struct{}

// NewExecProber creates a prober backed by os/exec.
func NewExecProber() *ExecProber {
	return &ExecProber{}
}

// LookPath searches PATH for name.
func (ExecProber) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes path with args and returns combined output.
func (ExecProber) Run(ctx context.Context, path string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if ctx.Err() != nil {
		return string(out), fmt.Errorf("%s timed out: %w", path, ctx.Err())
	}
	return string(out), err
}

// ToolSpec names a tool and how to query its version.
type ToolSpec struct {
	Name   string
	Binary string
	Args   []string
}

// StatusTools are probed by status and scan.
var StatusTools = []ToolSpec{
	{Name: "python", Binary: "python3", Args: []string{"--version"}},
	{Name: "node", Binary: "node", Args: []string{"--version"}},
	{Name: "npm", Binary: "npm", Args: []string{"--version"}},
	{Name: "git", Binary: "git", Args: []string{"--version"}},
	{Name: "docker", Binary: "docker", Args: []string{"--version"}},
}

// FixTools are the tools fix requires.
var FixTools = StatusTools[:4]

// ToolStatus is the probe result for one tool. A missing tool serializes as
// {"installed": false, "version": null, "path": null}.
type ToolStatus struct {
	Installed bool    `json:"installed"`
	Version   *string `json:"version"`
	Path      *string `json:"path"`
	SemVer    string  `json:"semver,omitempty"`
	Output    string  `json:"output,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// VersionOrEmpty returns the version string, or "" when unknown.
func (s ToolStatus) VersionOrEmpty() string {
	if s.Version == nil {
		return ""
	}
	return *s.Version
}

// UnknownVersion is reported when a tool exists but its version query fails.
const UnknownVersion = "unknown"

// ToolService probes developer tools with a bounded timeout.
type ToolService struct {
	prober  ToolProber
	timeout time.Duration
}

// NewToolService creates a ToolService.
func NewToolService(prober ToolProber, timeout time.Duration) *ToolService {
	if prober == nil {
		prober = NewExecProber()
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &ToolService{prober: prober, timeout: timeout}
}

// Name returns the service name "tools".
func (t *ToolService) Name() string {
	return "tools"
}

// Probe checks one tool. It never fails: a missing executable or a failed
// version query is reported in the returned status.
func (t *ToolService) Probe(ctx context.Context, spec ToolSpec, verbose bool) ToolStatus {
	path, err := t.prober.LookPath(spec.Binary)
	if err != nil {
		logger.Debug("Tool not found", "tool", spec.Name, "binary", spec.Binary)
		return ToolStatus{Installed: false}
	}

	probeCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.prober.Run(probeCtx, path, spec.Args...)
	status := ToolStatus{Installed: true, Path: strPtr(path)}
	clean := strings.TrimSpace(ansi.Strip(out))
	if err != nil {
		logger.Debug("Tool version query failed", "tool", spec.Name, "error", err)
		status.Version = strPtr(UnknownVersion)
		status.Error = err.Error()
		if verbose {
			status.Output = clean
		}
		return status
	}

	first := clean
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = strings.TrimSpace(first[:i])
	}
	if first == "" {
		first = UnknownVersion
	}
	status.Version = strPtr(first)
	status.SemVer = version.Extract(first)
	if verbose {
		status.Output = clean
	}
	return status
}

// ProbeAll checks every spec in order.
func (t *ToolService) ProbeAll(ctx context.Context, specs []ToolSpec, verbose bool) map[string]ToolStatus {
	results := make(map[string]ToolStatus, len(specs))
	for _, spec := range specs {
		results[spec.Name] = t.Probe(ctx, spec, verbose)
	}
	return results
}

// Missing returns the names of specs whose executable is absent or whose
// version query failed.
func (t *ToolService) Missing(ctx context.Context, specs []ToolSpec) []string {
	var missing []string
	for _, spec := range specs {
		status := t.Probe(ctx, spec, false)
		if !status.Installed || status.Error != "" {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}

// Available reports whether binary is on the search path.
func (t *ToolService) Available(binary string) (string, bool) {
	path, err := t.prober.LookPath(binary)
	if err != nil {
		return "", false
	}
	return path, true
}

// RunCommand runs argv with the given timeout and returns trimmed output.
func (t *ToolService) RunCommand(ctx context.Context, timeout time.Duration, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}
	path, err := t.prober.LookPath(argv[0])
	if err != nil {
		return "", fmt.Errorf("%s not found: %w", argv[0], err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := t.prober.Run(ctx, path, argv[1:]...)
	return strings.TrimSpace(ansi.Strip(out)), err
}

func strPtr(s string) *string {
	return &s
}
