package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeTool is one executable known to a FakeProber.
type FakeTool struct {
	Path   string
	Output string
	Err    error
	// Panic makes Run panic with this value.
	Panic any
}

// FakeProber implements services.ToolProber without touching the host.
// Binaries not in Tools are reported as missing.
type FakeProber struct {
	mu    sync.Mutex
	Tools map[string]FakeTool
	Calls []string
}

// NewFakeProber creates a prober that knows tools, keyed by binary name.
func NewFakeProber(tools map[string]FakeTool) *FakeProber {
	if tools == nil {
		tools = map[string]FakeTool{}
	}
	return &FakeProber{Tools: tools}
}

// InstalledTools returns a prober with every status tool present.
func InstalledTools() *FakeProber {
	return NewFakeProber(map[string]FakeTool{
		"python3": {Path: "/usr/bin/python3", Output: "Python 3.12.2\n"},
		"node":    {Path: "/usr/bin/node", Output: "v20.11.1\n"},
		"npm":     {Path: "/usr/bin/npm", Output: "10.2.4\n"},
		"git":     {Path: "/usr/bin/git", Output: "git version 2.43.0\n"},
		"docker":  {Path: "/usr/bin/docker", Output: "Docker version 25.0.3, build 4debf41\n"},
	})
}

// Add registers binary and returns the prober.
func (f *FakeProber) Add(binary string, tool FakeTool) *FakeProber {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tool.Path == "" {
		tool.Path = "/usr/bin/" + binary
	}
	f.Tools[binary] = tool
	return f
}

// Remove forgets binary and returns the prober.
func (f *FakeProber) Remove(binary string) *FakeProber {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Tools, binary)
	return f
}

// LookPath resolves a known binary.
func (f *FakeProber) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tool, ok := f.Tools[name]
	if !ok {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	if tool.Path == "" {
		return "/usr/bin/" + name, nil
	}
	return tool.Path, nil
}

// Run returns the canned output of the tool whose path matches.
func (f *FakeProber) Run(ctx context.Context, path string, args ...string) (string, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, strings.TrimSpace(path+" "+strings.Join(args, " ")))
	var found *FakeTool
	for name, tool := range f.Tools {
		if tool.Path == path || (tool.Path == "" && "/usr/bin/"+name == path) {
			t := tool
			found = &t
			break
		}
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if found == nil {
		return "", fmt.Errorf("fork/exec %s: no such file or directory", path)
	}
	if found.Panic != nil {
		panic(found.Panic)
	}
	return found.Output, found.Err
}

// CallLog returns a copy of the recorded invocations.
func (f *FakeProber) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}
