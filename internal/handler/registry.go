package handler

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry manages command registration and lookup by name.
type Registry struct {
	commands map[string]Command
	mu       sync.RWMutex
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// A command with the same name is replaced.
func (r *Registry) Register(c Command) error {
	if c.Name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if c.Run == nil {
		return fmt.Errorf("command %s has no handler", c.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[c.Name] = c
	return nil
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// Commands returns all registered commands ordered by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		commands = append(commands, c)
	}
	slices.SortFunc(commands, func(a, b Command) int {
		return strings.Compare(a.Name, b.Name)
	})
	return commands
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
