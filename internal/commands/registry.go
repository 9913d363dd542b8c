// Package commands provides command registration and dispatch for Devion.
// The registry is built once from a fixed entry table; the dispatcher turns
// a command name and a JSON argument blob into exactly one response envelope.
package commands

import (
	"fmt"
	"sort"

	"devion/pkg/devtypes"
)

// Factory creates a fresh module instance for one dispatch.
type Factory func() devtypes.Module

// Entry binds a command name to its module factory.
type Entry struct {
	Name        string
	Description string
	New         Factory
}

// Registry maps command names to entries. It is immutable after construction.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry from entries. It returns an error if a name
// is empty, a factory is missing, or a name appears twice.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, entry := range entries {
		if err := r.register(entry); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if entry.New == nil {
		return fmt.Errorf("command %s has no factory", entry.Name)
	}
	if _, exists := r.entries[entry.Name]; exists {
		return fmt.Errorf("command %s already registered", entry.Name)
	}
	r.entries[entry.Name] = entry
	return nil
}

// Lookup returns the entry registered under name. Matching is exact.
func (r *Registry) Lookup(name string) (Entry, bool) {
	entry, ok := r.entries[name]
	return entry, ok
}

// IsValidCommand checks if a command exists in the registry.
func (r *Registry) IsValidCommand(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns every registered command name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.entries)
}
