package builtin

import (
	"context"

	"devion/internal/commands"
	"devion/internal/services"
	"devion/pkg/devtypes"
)

type helpArgs struct {
	Command string `mapstructure:"command"`
}

// HelpCommand lists the registered commands or shows detailed help for one.
type HelpCommand struct {
	registry func() *commands.Registry
	catalog  func() (*services.HelpService, error)
}

// Validate checks that command, when given, is a string.
func (c *HelpCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	var a helpArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return args, nil
}

// Execute builds the command reference.
func (c *HelpCommand) Execute(_ context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	var a helpArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	registry := c.registry()
	catalog, err := c.catalog()
	if err != nil {
		return nil, err
	}

	if a.Command == "" {
		list := make(map[string]string, registry.Len())
		for _, name := range registry.Names() {
			entry, _ := registry.Lookup(name)
			desc := entry.Description
			if desc == "" {
				desc = catalog.Description(name)
			}
			list[name] = desc
		}
		return devtypes.NewResult(map[string]any{
			"commands": list,
		}, "📘 Devion command reference loaded successfully."), nil
	}

	if !registry.IsValidCommand(a.Command) {
		return nil, devtypes.InvalidArgumentf("no help for unknown command %q", a.Command)
	}
	info, ok := catalog.Get(a.Command)
	if !ok {
		entry, _ := registry.Lookup(a.Command)
		info = services.HelpInfo{Command: a.Command, Description: entry.Description, Usage: "devion " + a.Command + " '{}'"}
	}
	return devtypes.NewResult(map[string]any{
		"command": info,
	}, "📘 Help for '"+a.Command+"'."), nil
}
