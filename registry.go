package vkbase

import (
	"sync"

	"github.com/google/uuid"
)

// Releasable is anything holding GPU resources that must be freed before
// the device goes away.
type Releasable interface {
	Release()
}

type registryEntry struct {
	id    uuid.UUID
	name  string
	value Releasable
}

// Registry tracks GPU resources and releases them in reverse creation
// order, so dependents go before the objects they were built from.
type Registry struct {
	mu      sync.Mutex
	entries []registryEntry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Track registers a resource under a name and returns its handle id.
func (r *Registry) Track(name string, value Releasable) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.entries = append(r.entries, registryEntry{id: id, name: name, value: value})
	return id
}

// Release frees one tracked resource by id. Returns false when the id is
// unknown or already released.
func (r *Registry) Release(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry.id == id {
			entry.value.Release()
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports how many resources are still tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ReleaseAll frees every tracked resource, newest first.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := Log("registry")
	for i := len(r.entries) - 1; i >= 0; i-- {
		log.Debug().Str("resource", r.entries[i].name).Msg("release")
		r.entries[i].value.Release()
	}
	r.entries = nil
}
