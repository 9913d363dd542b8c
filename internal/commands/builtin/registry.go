// Package builtin provides the Devion command modules and the table that
// registers them.
package builtin

import (
	"sync"

	"devion/internal/commands"
	"devion/internal/services"
	"devion/pkg/devtypes"
)

// NewRegistry builds the production registry. Every module is bound to env.
func NewRegistry(env *services.Environment) (*commands.Registry, error) {
	var registry *commands.Registry
	catalog := sync.OnceValues(services.NewHelpService)

	entries := []commands.Entry{
		{
			Name:        "status",
			Description: "Check which core development tools are installed.",
			New:         func() devtypes.Module { return NewStatusCommand(env) },
		},
		{
			Name:        "scan",
			Description: "Scan your system for development tools and environment status.",
			New:         func() devtypes.Module { return NewScanCommand(env) },
		},
		{
			Name:        "analyze",
			Description: "Analyze the project structure and generate a summary.",
			New:         func() devtypes.Module { return NewAnalyzeCommand(env) },
		},
		{
			Name:        "fix",
			Description: "Fix missing tools or configurations automatically.",
			New:         func() devtypes.Module { return NewFixCommand(env) },
		},
		{
			Name:        "deploy",
			Description: "Deploy the current project to the output directory.",
			New:         func() devtypes.Module { return NewDeployCommand(env) },
		},
		{
			Name:        "config",
			Description: "Display or update Devion configuration settings.",
			New:         func() devtypes.Module { return NewConfigCommand(env) },
		},
		{
			Name:        "init",
			Description: "Initialize Devion and create configuration files.",
			New:         func() devtypes.Module { return NewInitCommand(env) },
		},
		{
			Name:        "help",
			Description: "Show available commands and their descriptions.",
			New: func() devtypes.Module {
				return &HelpCommand{
					registry: func() *commands.Registry { return registry },
					catalog:  catalog,
				}
			},
		},
		{
			Name:        "use",
			Description: "Activate or switch target environments.",
			New:         func() devtypes.Module { return NewUseCommand(env) },
		},
		{
			Name:        "setup",
			Description: "Install missing development tools with the system package manager.",
			New:         func() devtypes.Module { return NewSetupCommand(env) },
		},
	}

	var err error
	registry, err = commands.NewRegistry(entries...)
	if err != nil {
		return nil, err
	}
	return registry, nil
}
