package builtin

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"devion/internal/logger"
	"devion/internal/services"
	"devion/pkg/devtypes"
)

// AllTools selects every status tool for setup.
const AllTools = "all"

type setupArgs struct {
	Tool  string `mapstructure:"tool"`
	Apply bool   `mapstructure:"apply"`
}

// SetupCommand installs missing development tools with the system package
// manager. Without apply it only reports the install plan.
type SetupCommand struct {
	env *services.Environment
}

// NewSetupCommand creates a setup module bound to env.
func NewSetupCommand(env *services.Environment) *SetupCommand {
	return &SetupCommand{env: env}
}

// Validate checks the tool name.
func (c *SetupCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	if _, err := parseSetupArgs(args); err != nil {
		return nil, err
	}
	return args, nil
}

func parseSetupArgs(args devtypes.Arguments) (setupArgs, error) {
	a := setupArgs{Tool: AllTools}
	if err := decodeArgs(args, &a); err != nil {
		return a, err
	}
	a.Tool = strings.ToLower(strings.TrimSpace(a.Tool))
	if a.Tool == "" {
		a.Tool = AllTools
	}
	known := services.InstallableTools()
	if a.Tool != AllTools && !slices.Contains(known, a.Tool) {
		return a, devtypes.InvalidArgumentf("unknown tool %q, expected one of: %s, %s", a.Tool, AllTools, strings.Join(known, ", "))
	}
	return a, nil
}

// Execute plans, and with apply runs, the installs.
func (c *SetupCommand) Execute(ctx context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	a, err := parseSetupArgs(args)
	if err != nil {
		return nil, err
	}

	configCreated, err := c.env.Config().EnsureExists()
	if err != nil {
		return nil, err
	}

	tools := c.env.Tools()
	pm, ok := tools.DetectPackageManager()
	if !ok {
		return nil, devtypes.ToolUnavailablef("no supported package manager found (tried apt-get, pacman, dnf, brew)")
	}

	var requested []services.ToolSpec
	for _, spec := range services.StatusTools {
		if a.Tool == AllTools || spec.Name == a.Tool {
			requested = append(requested, spec)
		}
	}

	alreadyInstalled := []string{}
	var toInstall []string
	for _, spec := range requested {
		if status := tools.Probe(ctx, spec, false); status.Installed && status.Error == "" {
			alreadyInstalled = append(alreadyInstalled, spec.Name)
			continue
		}
		toInstall = append(toInstall, spec.Name)
	}

	plan := services.PlanInstall(pm, toInstall)
	data := map[string]any{
		"package_manager":   pm.Name,
		"config_created":    configCreated,
		"already_installed": alreadyInstalled,
		"plan":              plan,
		"applied":           a.Apply,
	}

	if len(plan) == 0 {
		return devtypes.NewResult(data, "🧰 All requested tools are already installed."), nil
	}
	if !a.Apply {
		return devtypes.NewResult(data, fmt.Sprintf("🧰 %d tool(s) to install with %s. Pass \"apply\": true to install.", len(plan), pm.Name)), nil
	}

	logger.Info("Installing tools", "manager", pm.Name, "count", len(plan))
	outcome := tools.Install(ctx, plan, c.env.InstallTimeout)
	data["installed"] = outcome.Installed
	data["failed"] = outcome.Failed

	errs := make([]string, 0, len(outcome.Failed))
	for _, tool := range outcome.Failed {
		errs = append(errs, fmt.Sprintf("failed to install %s: %s", tool, outcome.Errors[tool]))
	}
	message := fmt.Sprintf("🧰 Installed %d tool(s) with %s.", len(outcome.Installed), pm.Name)
	if len(errs) > 0 {
		message = "⚠️ Setup completed with some issues."
	}
	return devtypes.NewResult(data, message).WithErrors(errs...), nil
}
