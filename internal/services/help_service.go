package services

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"devion/internal/data/embedded"
)

// HelpInfo is the structured help for one command.
type HelpInfo struct {
	Command     string        `json:"command" yaml:"command"`
	Description string        `json:"description" yaml:"description"`
	Usage       string        `json:"usage" yaml:"usage"`
	Options     []HelpOption  `json:"options,omitempty" yaml:"options"`
	Examples    []HelpExample `json:"examples,omitempty" yaml:"examples"`
	Notes       []string      `json:"notes,omitempty" yaml:"notes"`
}

// HelpOption describes one argument key.
type HelpOption struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Default     string `json:"default,omitempty" yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

// HelpExample is a usage example with explanation.
type HelpExample struct {
	Command     string `json:"command" yaml:"command"`
	Description string `json:"description" yaml:"description"`
}

type helpCatalogFile struct {
	Commands []HelpInfo `yaml:"commands"`
}

// HelpService serves command help from the embedded catalog.
type HelpService struct {
	entries map[string]HelpInfo
}

// NewHelpService parses the embedded catalog.
func NewHelpService() (*HelpService, error) {
	return NewHelpServiceFromData(embedded.CommandCatalogData)
}

// NewHelpServiceFromData parses a catalog from raw YAML.
func NewHelpServiceFromData(data []byte) (*HelpService, error) {
	var file helpCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse help catalog: %w", err)
	}

	entries := make(map[string]HelpInfo, len(file.Commands))
	for _, info := range file.Commands {
		if info.Command == "" {
			return nil, fmt.Errorf("help catalog entry without command name")
		}
		if _, dup := entries[info.Command]; dup {
			return nil, fmt.Errorf("help catalog lists %s twice", info.Command)
		}
		entries[info.Command] = info
	}
	return &HelpService{entries: entries}, nil
}

// Name returns the service name "help".
func (h *HelpService) Name() string {
	return "help"
}

// Get returns help for one command.
func (h *HelpService) Get(command string) (HelpInfo, bool) {
	info, ok := h.entries[command]
	return info, ok
}

// Description returns the one-line description for command, or "".
func (h *HelpService) Description(command string) string {
	return h.entries[command].Description
}

// Commands returns the documented command names, sorted.
func (h *HelpService) Commands() []string {
	names := make([]string, 0, len(h.entries))
	for name := range h.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
