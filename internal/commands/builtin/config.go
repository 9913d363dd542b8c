package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"devion/internal/logger"
	"devion/internal/services"
	"devion/pkg/devtypes"
)

// ConfigCommand reads the config file or updates one existing setting.
type ConfigCommand struct {
	env *services.Environment
}

// NewConfigCommand creates a config module bound to env.
func NewConfigCommand(env *services.Environment) *ConfigCommand {
	return &ConfigCommand{env: env}
}

// Validate requires key and value together. A key must be a non-empty
// string; a value must be a string or a boolean.
func (c *ConfigCommand) Validate(args devtypes.Arguments) (devtypes.Arguments, error) {
	rawKey, hasKey := args["key"]
	rawValue, hasValue := args["value"]
	if hasValue && rawValue == nil {
		hasValue = false
	}
	if hasKey && rawKey == nil {
		hasKey = false
	}

	switch {
	case !hasKey && !hasValue:
		return devtypes.Arguments{}, nil
	case hasKey != hasValue:
		return nil, devtypes.InvalidArgumentf("update operation requires both 'key' and 'value'")
	}

	key, ok := rawKey.(string)
	if !ok || strings.TrimSpace(key) == "" {
		return nil, devtypes.InvalidArgumentf("'key' must be a non-empty string")
	}
	switch rawValue.(type) {
	case string, bool:
	default:
		return nil, devtypes.InvalidArgumentf("'value' must be a string or a boolean, got %T", rawValue)
	}
	return devtypes.Arguments{"key": key, "value": rawValue}, nil
}

// Execute reads or updates the config.
func (c *ConfigCommand) Execute(_ context.Context, args devtypes.Arguments) (devtypes.Result, error) {
	store := c.env.Config()
	doc, err := store.LoadDocument()
	if err != nil {
		return nil, err
	}

	key, isUpdate := args["key"].(string)
	if !isUpdate {
		return devtypes.NewResult(doc, "📄 Current Devion configuration loaded successfully."), nil
	}

	settings, err := services.Settings(doc)
	if err != nil {
		return nil, err
	}
	current, ok := settings[key]
	if !ok {
		return nil, devtypes.InvalidArgumentf("unknown config key: %s. Available keys are: %s", key, strings.Join(sortedKeys(settings), ", "))
	}

	before := renderDocument(doc)
	settings[key] = coerceSetting(current, args["value"])
	logConfigDiff(key, before, renderDocument(doc))

	if err := store.SaveDocument(doc); err != nil {
		return nil, err
	}
	return devtypes.NewResult(doc, fmt.Sprintf("✅ Setting '%s' updated successfully.", key)), nil
}

// coerceSetting converts value to the stored type. Boolean settings accept
// JSON booleans and the strings "true"/"false" in any case; everything
// else is stored as a string.
func coerceSetting(current, value any) any {
	if _, isBool := current.(bool); isBool {
		switch v := value.(type) {
		case bool:
			return v
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true":
				return true
			case "false":
				return false
			}
		}
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderDocument(doc map[string]any) string {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Sprint(doc)
	}
	return string(data)
}

// logConfigDiff logs the change as a patch at debug level.
func logConfigDiff(key, before, after string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	patch := dmp.PatchToText(dmp.PatchMake(before, diffs))
	logger.Debug("Config setting changed", "key", key, "patch", patch)
}
