package builtin

import (
	"context"
	"fmt"

	"devion/internal/services"
	"devion/pkg/devtypes"
)

type statusArgs struct {
	Verbose bool `mapstructure:"verbose"`
}

// StatusCommand implements the status command. It checks which of the core
// development tools are installed and reports their versions.
type StatusCommand struct {
	env *services.Environment
}

// NewStatusCommand creates a status module bound to env.
func NewStatusCommand(env *services.Environment) *StatusCommand {
	return &StatusCommand{env: env}
}

// Validate accepts an optional verbose flag.
func (c *StatusCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	var a statusArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return args, nil
}

// Execute probes every status tool.
func (c *StatusCommand) Execute(ctx context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	var a statusArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	tools := c.env.Tools().ProbeAll(ctx, services.StatusTools, a.Verbose)
	installed := 0
	formatted := make(map[string]string, len(tools))
	for name, status := range tools {
		if status.Installed {
			installed++
			formatted[name] = "✅ " + status.VersionOrEmpty()
		} else {
			formatted[name] = "❌ Not installed"
		}
	}
	total := len(services.StatusTools)

	return devtypes.NewResult(map[string]any{
		"tools":     tools,
		"formatted": formatted,
		"summary": map[string]int{
			"installed": installed,
			"total":     total,
			"missing":   total - installed,
		},
	}, fmt.Sprintf("%d/%d tools installed.", installed, total)), nil
}
