package builtin

import (
	"context"

	"devion/internal/services"
	"devion/pkg/devtypes"
)

// ScanCommand implements the scan command: host details, tool status and
// the state of the Devion config folder.
type ScanCommand struct {
	env *services.Environment
}

// NewScanCommand creates a scan module bound to env.
func NewScanCommand(env *services.Environment) *ScanCommand {
	return &ScanCommand{env: env}
}

// Validate accepts the same optional verbose flag as status.
func (c *ScanCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	var a statusArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return args, nil
}

// Execute runs the scan.
func (c *ScanCommand) Execute(ctx context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	var a statusArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	project := c.env.Project()
	folder, err := project.Folder(c.env.ConfigDir())
	if err != nil {
		return nil, err
	}

	return devtypes.NewResult(map[string]any{
		"system":        project.System(),
		"tools":         c.env.Tools().ProbeAll(ctx, services.StatusTools, a.Verbose),
		"devion_folder": folder,
	}, "🔍 System scan completed successfully."), nil
}
