package strategy

import "github.com/hongquyngo/vti-production-sub002/internal/domain/inventory"

// NewRegistryWithDefaults registers fefo and fifo, with fefo as the default
func NewRegistryWithDefaults() (*Registry, error) {
	r := NewRegistry()

	fefo := inventory.NewFEFOStrategy()
	if err := r.Register(fefo); err != nil {
		return nil, err
	}
	if err := r.Register(NewFIFOStrategy()); err != nil {
		return nil, err
	}

	if err := r.SetDefault(fefo.Name()); err != nil {
		return nil, err
	}
	return r, nil
}
