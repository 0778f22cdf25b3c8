package resilience

import (
	"sync"

	"github.com/sony/gobreaker/v2"
)

// Registry tracks the resilient clients by upstream name so callers can
// check provider health before choosing a provider.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register adds a client under its upstream name.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Name()] = client
}

// Healthy reports whether the named upstream's circuit is closed.
// Unknown upstreams are considered healthy so a missing registration
// never blocks a fetch.
func (r *Registry) Healthy(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[name]
	if !ok {
		return true
	}
	return client.State() == gobreaker.StateClosed
}

// States returns the breaker state per registered upstream.
func (r *Registry) States() map[string]gobreaker.State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]gobreaker.State, len(r.clients))
	for name, client := range r.clients {
		states[name] = client.State()
	}
	return states
}
