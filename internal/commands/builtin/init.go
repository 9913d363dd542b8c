package builtin

import (
	"context"
	"fmt"

	"devion/internal/logger"
	"devion/internal/services"
	"devion/pkg/devtypes"
)

// InitCommand creates the config directory and writes a default config.
// An existing config is replaced.
type InitCommand struct {
	devtypes.PassThrough
	env *services.Environment
}

// NewInitCommand creates an init module bound to env.
func NewInitCommand(env *services.Environment) *InitCommand {
	return &InitCommand{env: env}
}

// Execute writes the defaults.
func (c *InitCommand) Execute(_ context.Context, _ devtypes.Arguments) (devtypes.Result, error) {
	store := c.env.Config()
	if _, err := store.EnsureDir(); err != nil {
		return nil, err
	}
	if _, err := store.WriteDefaults(); err != nil {
		return nil, err
	}
	logger.Info("Initialized config", "path", store.Path())

	return devtypes.NewResult(map[string]any{
		"config_path": store.Path(),
	}, fmt.Sprintf("✅ Devion initialized successfully at %s", store.Path())), nil
}
