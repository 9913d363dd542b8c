package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"devion/internal/logger"
	"devion/internal/services"
	"devion/pkg/devtypes"
)

// DefaultDeployDir is the output directory used when none is given.
const DefaultDeployDir = "dist"

type deployArgs struct {
	Output string `mapstructure:"output"`
}

// DeployCommand packages the working directory: it creates the output
// directory and records a deploy log in it.
type DeployCommand struct {
	env *services.Environment
}

// NewDeployCommand creates a deploy module bound to env.
func NewDeployCommand(env *services.Environment) *DeployCommand {
	return &DeployCommand{env: env}
}

// Validate requires output to be a relative path that stays inside the
// working directory.
func (c *DeployCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	a, err := parseDeployArgs(args)
	if err != nil {
		return nil, err
	}
	return args.With("output", a.Output), nil
}

func parseDeployArgs(args devtypes.Arguments) (deployArgs, error) {
	a := deployArgs{Output: DefaultDeployDir}
	if err := decodeArgs(args, &a); err != nil {
		return a, err
	}
	if a.Output == "" {
		a.Output = DefaultDeployDir
	}
	clean := filepath.Clean(a.Output)
	if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return a, devtypes.InvalidArgumentf("output must be a directory inside the project, got %q", a.Output)
	}
	a.Output = clean
	return a, nil
}

// Execute writes the deploy log.
func (c *DeployCommand) Execute(_ context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	a, err := parseDeployArgs(args)
	if err != nil {
		return nil, err
	}

	projectDir := c.env.WorkDir
	outputDir := filepath.Join(projectDir, a.Output)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, devtypes.WrapIO(err, "failed to create deployment directory at %s", outputDir)
	}

	// Only the top-level component of output can sit in the project root.
	top := strings.SplitN(filepath.ToSlash(a.Output), "/", 2)[0]
	project := c.env.Project()
	count, err := project.CountTopLevel(projectDir, top)
	if err != nil {
		return nil, err
	}

	log := services.DeployLog{
		DeployedAt:    c.env.Timestamp(),
		ProjectPath:   projectDir,
		OutputPath:    outputDir,
		Status:        "success",
		FilesPackaged: count,
	}
	logPath, err := project.WriteDeployLog(outputDir, log)
	if err != nil {
		return nil, err
	}
	logger.Info("Deploy log written", "path", logPath, "files", count)

	return devtypes.NewResult(log, fmt.Sprintf("🚀 Project deployed successfully to %s.", outputDir)), nil
}
