package chat

import "sync"

// Rooms tracks which connections are subscribed to which room. One
// room per broadcast; a connection may sit in several rooms at once.
// A room that loses its last member stays addressable as an empty set;
// its message history lives in the ledger, not here.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
}

// NewRooms builds an empty membership manager.
func NewRooms() *Rooms {
	return &Rooms{members: make(map[string]map[string]struct{})}
}

// Join subscribes a connection to a room. Joining twice is a no-op.
func (r *Rooms) Join(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.members[roomID]
	if !ok {
		set = make(map[string]struct{})
		r.members[roomID] = set
	}
	set[connID] = struct{}{}
}

// Leave unsubscribes a connection from one room.
func (r *Rooms) Leave(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.members[roomID]; ok {
		delete(set, connID)
	}
}

// LeaveAll removes the connection from every room it joined. Called on
// disconnect; this is the cleanup guarantee that keeps membership from
// growing without bound across reconnects.
func (r *Rooms) LeaveAll(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.members {
		delete(set, connID)
	}
}

// MembersOf returns a snapshot of the connection ids in a room.
func (r *Rooms) MembersOf(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.members[roomID]
	out := make([]string, 0, len(set))
	for connID := range set {
		out = append(out, connID)
	}
	return out
}

// Contains reports whether the connection is currently in the room.
func (r *Rooms) Contains(roomID, connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[roomID][connID]
	return ok
}
