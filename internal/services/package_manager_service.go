package services

import (
	"context"
	"sort"
	"time"

	"devion/internal/logger"
)

// PackageManager describes how to install packages with one system manager.
type PackageManager struct {
	Name     string            `json:"name"`
	Binary   string            `json:"-"`
	Install  []string          `json:"-"`
	Packages map[string]string `json:"-"`
}

// InstallCommand returns the argv installing tool, or false when this
// manager has no package for it.
func (pm PackageManager) InstallCommand(tool string) ([]string, bool) {
	pkg, ok := pm.Packages[tool]
	if !ok {
		return nil, false
	}
	argv := append([]string{}, pm.Install...)
	return append(argv, pkg), true
}

// PackageManagers are tried in order; the first one found on PATH wins.
var PackageManagers = []PackageManager{
	{
		Name:    "apt",
		Binary:  "apt-get",
		Install: []string{"sudo", "apt-get", "install", "-y"},
		Packages: map[string]string{
			"python": "python3", "node": "nodejs", "npm": "npm", "git": "git", "docker": "docker.io",
		},
	},
	{
		Name:    "pacman",
		Binary:  "pacman",
		Install: []string{"sudo", "pacman", "-S", "--noconfirm"},
		Packages: map[string]string{
			"python": "python", "node": "nodejs", "npm": "npm", "git": "git", "docker": "docker",
		},
	},
	{
		Name:    "dnf",
		Binary:  "dnf",
		Install: []string{"sudo", "dnf", "install", "-y"},
		Packages: map[string]string{
			"python": "python3", "node": "nodejs", "npm": "npm", "git": "git", "docker": "docker",
		},
	},
	{
		Name:    "brew",
		Binary:  "brew",
		Install: []string{"brew", "install"},
		Packages: map[string]string{
			"python": "python3", "node": "node", "npm": "npm", "git": "git", "docker": "docker",
		},
	},
}

// InstallableTools lists the tool names setup knows how to install.
func InstallableTools() []string {
	seen := map[string]bool{}
	for _, pm := range PackageManagers {
		for tool := range pm.Packages {
			seen[tool] = true
		}
	}
	tools := make([]string, 0, len(seen))
	for tool := range seen {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	return tools
}

// DetectPackageManager returns the first package manager available on PATH.
func (t *ToolService) DetectPackageManager() (PackageManager, bool) {
	for _, pm := range PackageManagers {
		if _, ok := t.Available(pm.Binary); ok {
			return pm, true
		}
	}
	return PackageManager{}, false
}

// InstallPlan maps each tool to its install argv.
type InstallPlan map[string][]string

// PlanInstall builds install commands for tools with pm.
func PlanInstall(pm PackageManager, tools []string) InstallPlan {
	plan := make(InstallPlan, len(tools))
	for _, tool := range tools {
		if argv, ok := pm.InstallCommand(tool); ok {
			plan[tool] = argv
		}
	}
	return plan
}

// InstallOutcome records which planned installs succeeded.
type InstallOutcome struct {
	Installed []string          `json:"installed"`
	Failed    []string          `json:"failed"`
	Errors    map[string]string `json:"-"`
}

// Install runs every command in plan, in tool name order. Each command is
// bounded by timeout.
func (t *ToolService) Install(ctx context.Context, plan InstallPlan, timeout time.Duration) InstallOutcome {
	tools := make([]string, 0, len(plan))
	for tool := range plan {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	outcome := InstallOutcome{Installed: []string{}, Failed: []string{}, Errors: map[string]string{}}
	for _, tool := range tools {
		out, err := t.RunCommand(ctx, timeout, plan[tool])
		if err != nil {
			logger.Warn("Install failed", "tool", tool, "error", err, "output", out)
			outcome.Failed = append(outcome.Failed, tool)
			outcome.Errors[tool] = err.Error()
			continue
		}
		outcome.Installed = append(outcome.Installed, tool)
	}
	return outcome
}
