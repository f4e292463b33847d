package proxy

import (
	"errors"
	"fmt"
	"sync"
)

// ErrProxyNotFound is returned when an identifier has no registered proxy.
var ErrProxyNotFound = errors.New("proxy: no proxy registered for identifier")

// Registry maps opaque 64-bit identifiers to proxies. A registered proxy
// lives until Release drops it; identifiers are never reused within a
// Registry. All operations are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	nextID  uint64
	proxies map[uint64]Proxy
}

// NewRegistry creates an empty registry. Identifiers start at 1 so that 0
// can address factory calls on the wire.
func NewRegistry() *Registry {
	return &Registry{
		proxies: make(map[uint64]Proxy),
	}
}

// Manage registers a proxy and returns its fresh identifier. Every call
// yields a distinct identifier, even for the same proxy value.
func (r *Registry) Manage(p Proxy) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.proxies[r.nextID] = p
	return r.nextID
}

// Get returns the proxy registered under id.
func (r *Registry) Get(id uint64) (Proxy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proxies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProxyNotFound, id)
	}
	return p, nil
}

// Release drops the proxy registered under id. It reports whether an entry
// was removed.
func (r *Registry) Release(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proxies[id]; !ok {
		return false
	}
	delete(r.proxies, id)
	return true
}

// Count returns the number of live entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.proxies)
}
