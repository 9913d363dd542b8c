package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProber serves canned LookPath and Run results.
type fakeProber struct {
	paths   map[string]string
	outputs map[string]string
	fails   map[string]error
	ran     []string
}

func (f *fakeProber) LookPath(name string) (string, error) {
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

func (f *fakeProber) Run(ctx context.Context, path string, args ...string) (string, error) {
	f.ran = append(f.ran, strings.TrimSpace(path+" "+strings.Join(args, " ")))
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.fails[path]; ok {
		return f.outputs[path], err
	}
	return f.outputs[path], nil
}

func TestToolService_Probe(t *testing.T) {
	prober := &fakeProber{
		paths: map[string]string{
			"git":     "/usr/bin/git",
			"python3": "/usr/bin/python3",
			"node":    "/usr/bin/node",
		},
		outputs: map[string]string{
			"/usr/bin/git":     "git version 2.43.0\n",
			"/usr/bin/python3": "\x1b[32mPython 3.12.2\x1b[0m\nextra line\n",
			"/usr/bin/node":    "segfault",
		},
		fails: map[string]error{"/usr/bin/node": errors.New("exit status 139")},
	}
	svc := NewToolService(prober, time.Second)

	t.Run("missing tool", func(t *testing.T) {
		status := svc.Probe(context.Background(), ToolSpec{Name: "docker", Binary: "docker", Args: []string{"--version"}}, false)
		assert.False(t, status.Installed)
		assert.Nil(t, status.Version)
		assert.Nil(t, status.Path)
	})

	t.Run("installed tool", func(t *testing.T) {
		status := svc.Probe(context.Background(), ToolSpec{Name: "git", Binary: "git", Args: []string{"--version"}}, false)
		assert.True(t, status.Installed)
		assert.Equal(t, "git version 2.43.0", status.VersionOrEmpty())
		assert.Equal(t, "/usr/bin/git", *status.Path)
		assert.Equal(t, "2.43.0", status.SemVer)
		assert.Empty(t, status.Output)
	})

	t.Run("ansi stripped and first line only", func(t *testing.T) {
		status := svc.Probe(context.Background(), ToolSpec{Name: "python", Binary: "python3", Args: []string{"--version"}}, true)
		assert.Equal(t, "Python 3.12.2", status.VersionOrEmpty())
		assert.Equal(t, "Python 3.12.2\nextra line", status.Output)
	})

	t.Run("failing version query", func(t *testing.T) {
		status := svc.Probe(context.Background(), ToolSpec{Name: "node", Binary: "node", Args: []string{"--version"}}, false)
		assert.True(t, status.Installed)
		assert.Equal(t, UnknownVersion, status.VersionOrEmpty())
		assert.Contains(t, status.Error, "exit status 139")
	})
}

func TestToolService_ProbeAll_And_Missing(t *testing.T) {
	prober := &fakeProber{
		paths:   map[string]string{"git": "/usr/bin/git"},
		outputs: map[string]string{"/usr/bin/git": "git version 2.43.0"},
	}
	svc := NewToolService(prober, time.Second)

	all := svc.ProbeAll(context.Background(), StatusTools, false)
	require.Len(t, all, len(StatusTools))
	assert.True(t, all["git"].Installed)
	assert.False(t, all["docker"].Installed)

	assert.Equal(t, []string{"python", "node", "npm"}, svc.Missing(context.Background(), FixTools))
}

func TestToolService_Probe_Timeout(t *testing.T) {
	prober := &fakeProber{paths: map[string]string{"git": "/usr/bin/git"}}
	svc := NewToolService(prober, time.Nanosecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	status := svc.Probe(ctx, ToolSpec{Name: "git", Binary: "git"}, false)
	assert.True(t, status.Installed)
	assert.Equal(t, UnknownVersion, status.VersionOrEmpty())
}

func TestToolService_RunCommand(t *testing.T) {
	prober := &fakeProber{
		paths:   map[string]string{"brew": "/opt/homebrew/bin/brew"},
		outputs: map[string]string{"/opt/homebrew/bin/brew": "  done \n"},
	}
	svc := NewToolService(prober, time.Second)

	out, err := svc.RunCommand(context.Background(), time.Second, []string{"brew", "install", "git"})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"/opt/homebrew/bin/brew install git"}, prober.ran)

	_, err = svc.RunCommand(context.Background(), time.Second, []string{"sudo"})
	assert.Error(t, err)

	_, err = svc.RunCommand(context.Background(), time.Second, nil)
	assert.Error(t, err)
}
