package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Registry maps backend selectors to their store. It is populated once at
// start-up and read concurrently afterwards.
type Registry struct {
	stores map[string]Store
}

// NewRegistry builds a registry from name/store pairs, skipping nil stores.
func NewRegistry(stores map[string]Store) *Registry {
	r := &Registry{stores: make(map[string]Store, len(stores))}
	for name, st := range stores {
		if st == nil {
			continue
		}
		r.stores[strings.ToLower(strings.TrimSpace(name))] = st
	}
	return r
}

// Get resolves a backend selector.
func (r *Registry) Get(name string) (Store, error) {
	if r != nil {
		if st, ok := r.stores[strings.ToLower(strings.TrimSpace(name))]; ok {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// Names returns the registered selectors in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered store, collecting all failures.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs error
	for _, name := range r.Names() {
		if err := r.stores[name].Close(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close %s store: %w", name, err))
		}
	}
	return errs
}
