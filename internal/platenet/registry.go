package platenet

import (
	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/errors"
)

// Registry owns the PlateNet instances, one per variant, with explicit
// reference-counted lifetimes. It replaces any ambient model singleton:
// construct one registry and pass it where pipelines are needed.
type Registry struct {
	settings *conf.Settings

	// The registry is not safe for concurrent use; pipelines are acquired
	// during setup on a single goroutine.
	entries map[Variant]*registryEntry
}

type registryEntry struct {
	pn   *PlateNet
	refs int
}

// NewRegistry creates an empty registry bound to settings.
func NewRegistry(settings *conf.Settings) *Registry {
	return &Registry{
		settings: settings,
		entries:  make(map[Variant]*registryEntry),
	}
}

// Acquire returns the PlateNet for variant, loading it on first use, and
// increments its reference count.
func (r *Registry) Acquire(variant Variant) (*PlateNet, error) {
	if entry, ok := r.entries[variant]; ok {
		entry.refs++
		return entry.pn, nil
	}

	pn, err := New(r.settings, variant)
	if err != nil {
		return nil, err
	}
	r.entries[variant] = &registryEntry{pn: pn, refs: 1}
	return pn, nil
}

// Release decrements the reference count for variant, deleting the model
// when the last reference is gone.
func (r *Registry) Release(variant Variant) error {
	entry, ok := r.entries[variant]
	if !ok {
		return errors.Newf("platenet: release of unacquired variant %q", variant).
			Component("platenet").
			Category(errors.CategoryRegistry).
			Build()
	}
	entry.refs--
	if entry.refs <= 0 {
		entry.pn.Delete()
		delete(r.entries, variant)
	}
	return nil
}

// Close releases every remaining model regardless of reference counts.
func (r *Registry) Close() {
	for variant, entry := range r.entries {
		entry.pn.Delete()
		delete(r.entries, variant)
	}
}
