package builtin

import (
	"context"
	"fmt"
	"strings"

	"devion/internal/services"
	"devion/internal/version"
	"devion/pkg/devtypes"
)

// FixCommand repairs the local Devion setup without clobbering user
// settings and reports missing development tools.
type FixCommand struct {
	devtypes.PassThrough
	env *services.Environment
}

// NewFixCommand creates a fix module bound to env.
func NewFixCommand(env *services.Environment) *FixCommand {
	return &FixCommand{env: env}
}

// Execute checks the config and tools. Problems land in errors, which
// makes the envelope a failure while still carrying the data.
func (c *FixCommand) Execute(ctx context.Context, _ devtypes.Arguments) (devtypes.Result, error) {
	fixed := []string{}
	errs := []string{}

	store := c.env.Config()
	c.fixConfig(store, &fixed, &errs)

	missing := c.env.Tools().Missing(ctx, services.FixTools)
	if len(missing) > 0 {
		errs = append(errs, "Missing tools detected: "+strings.Join(missing, ", "))
	} else {
		fixed = append(fixed, "All required tools confirmed installed")
		missing = []string{}
	}

	message := "⚙️ System fix completed successfully."
	if len(errs) > 0 {
		message = "⚠️ Fix completed with some issues."
	}

	return devtypes.NewResult(map[string]any{
		"fixed_items":   fixed,
		"missing_tools": missing,
		"config_path":   store.Path(),
	}, message).WithErrors(errs...), nil
}

func (c *FixCommand) fixConfig(store *services.ConfigService, fixed, errs *[]string) {
	created, err := store.EnsureDir()
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("Failed to create config directory: %v", err))
		return
	}
	if created {
		*fixed = append(*fixed, "Created missing .devion directory")
	}

	exists, err := store.Exists()
	if err != nil {
		*errs = append(*errs, err.Error())
		return
	}
	if !exists {
		if _, err := store.WriteDefaults(); err != nil {
			*errs = append(*errs, fmt.Sprintf("Failed to write config.json: %v", err))
			return
		}
		*fixed = append(*fixed, "Recreated missing config.json")
		return
	}

	// An unreadable config is reported, never replaced.
	doc, err := store.LoadDocument()
	if err != nil {
		*errs = append(*errs, err.Error())
		return
	}

	changed := false
	switch v := doc["version"].(type) {
	case string:
		if !version.SchemaSupported(v) {
			*errs = append(*errs, fmt.Sprintf("config version %s is not supported by Devion %s", v, version.GetBaseVersion()))
			return
		}
	case nil:
		doc["version"] = version.ConfigSchemaVersion
		*fixed = append(*fixed, "Set missing config version")
		changed = true
	default:
		*errs = append(*errs, fmt.Sprintf("config version must be a string, got %T", v))
		return
	}

	if _, ok := doc["settings"]; !ok {
		doc["settings"] = map[string]any{}
	}
	added, err := services.AddMissingDefaults(doc)
	if err != nil {
		*errs = append(*errs, err.Error())
		return
	}
	if len(added) > 0 {
		*fixed = append(*fixed, "Added missing settings: "+strings.Join(added, ", "))
		changed = true
	}

	if changed {
		if err := store.SaveDocument(doc); err != nil {
			*errs = append(*errs, fmt.Sprintf("Failed to write config.json: %v", err))
		}
	}
}
