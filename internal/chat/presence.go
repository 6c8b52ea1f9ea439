package chat

import (
	"sync"

	"github.com/akudrin/livecast-server/internal/identity"
)

// Presence maps live connection ids to their resolved identities.
// Purely in-memory and never persisted: a connection's session dies
// with the process. Counts are per connection, not per identity: a
// user with two tabs open counts twice.
type Presence struct {
	mu       sync.RWMutex
	sessions map[string]identity.Identity
}

// NewPresence builds an empty registry.
func NewPresence() *Presence {
	return &Presence{sessions: make(map[string]identity.Identity)}
}

// Register binds a connection id to an identity. Re-registering the
// same id overwrites the previous binding.
func (p *Presence) Register(connID string, id identity.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[connID] = id
}

// Unregister removes the connection. Unknown ids are a no-op.
func (p *Presence) Unregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, connID)
}

// Get returns the identity bound to a connection id.
func (p *Presence) Get(connID string) (identity.Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.sessions[connID]
	return id, ok
}

// Count returns the number of active connections.
func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
