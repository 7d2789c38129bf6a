// Package strategy holds the named lot allocation strategies an issuance can
// run with, selected by configuration.
package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"
	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
)

// Registry manages allocation strategy registrations
type Registry struct {
	mu          sync.RWMutex
	strategies  map[string]inventory.AllocationStrategy
	defaultName string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]inventory.AllocationStrategy),
	}
}

// Register adds a strategy under its Name
func (r *Registry) Register(s inventory.AllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("%w: allocation strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.strategies[name] = s
	return nil
}

// Get returns a strategy by name, or the default if name is empty
func (r *Registry) Get(name string) (inventory.AllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultName
		if name == "" {
			return nil, fmt.Errorf("%w: no default allocation strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: allocation strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// GetOrDefault returns a strategy by name, falling back to the default
func (r *Registry) GetOrDefault(name string) inventory.AllocationStrategy {
	s, err := r.Get(name)
	if err != nil {
		s, _ = r.Get("")
	}
	return s
}

// List returns all registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a strategy and clears the default if it pointed there
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; !exists {
		return fmt.Errorf("%w: allocation strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.strategies, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
	return nil
}

// SetDefault sets the strategy used when no name is given
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; !exists {
		return fmt.Errorf("%w: allocation strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultName = name
	return nil
}

// Default returns the default strategy name
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}
