package builtin

import (
	"context"

	"devion/internal/services"
	"devion/pkg/devtypes"
)

type analyzeArgs struct {
	Path string `mapstructure:"path"`
}

// AnalyzeCommand summarizes the structure of a project directory.
type AnalyzeCommand struct {
	env *services.Environment
}

// NewAnalyzeCommand creates an analyze module bound to env.
func NewAnalyzeCommand(env *services.Environment) *AnalyzeCommand {
	return &AnalyzeCommand{env: env}
}

// Validate checks that path, when given, is a string.
func (c *AnalyzeCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	var a analyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return args, nil
}

// Execute walks the directory. Paths are relative to the working directory.
func (c *AnalyzeCommand) Execute(_ context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	var a analyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	summary, err := c.env.Project().Analyze(c.env.ResolvePath(a.Path))
	if err != nil {
		return nil, err
	}
	return devtypes.NewResult(map[string]any{
		"summary": summary,
	}, "📊 Project analysis completed."), nil
}
