package builtin

import (
	"context"
	"fmt"

	"devion/internal/services"
	"devion/pkg/devtypes"
)

// DefaultTarget is activated when use gets no target.
const DefaultTarget = "default"

type useArgs struct {
	Target string `mapstructure:"target"`
}

// UseCommand echoes back an activated target. Nothing is persisted.
type UseCommand struct {
	env *services.Environment
}

// NewUseCommand creates a use module bound to env.
func NewUseCommand(env *services.Environment) *UseCommand {
	return &UseCommand{env: env}
}

// Validate requires target, when present, to be a string.
func (c *UseCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	if v, ok := args["target"]; ok {
		if _, isString := v.(string); !isString {
			return nil, devtypes.InvalidArgumentf("the 'target' argument must be a string")
		}
	}
	return args, nil
}

// Execute activates the target.
func (c *UseCommand) Execute(_ context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	a := useArgs{Target: DefaultTarget}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Target == "" {
		a.Target = DefaultTarget
	}

	return devtypes.NewResult(map[string]any{
		"activated_at": c.env.Timestamp(),
		"target":       a.Target,
		"status":       "active",
	}, fmt.Sprintf("🎯 Target '%s' activated successfully.", a.Target)), nil
}
