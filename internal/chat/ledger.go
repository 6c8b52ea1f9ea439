package chat

import "context"

// Ledger is the persistence port for chat messages. The orchestrator
// never touches a storage technology directly: the in-memory ledger
// backs tests and tokenless deployments, the sqlite ledger backs
// production, and both satisfy this contract.
type Ledger interface {
	// Save appends a new message to the ledger.
	Save(ctx context.Context, msg *Message) error

	// FindByRoom returns up to limit of the most recent messages in a
	// room, ordered oldest to newest. An unknown room yields an empty
	// slice, not an error: rooms are not pre-declared entities.
	FindByRoom(ctx context.Context, roomID string, limit int) ([]*Message, error)

	// FindByID returns the message or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Message, error)

	// Mutate applies fn to the message under a per-message critical
	// section and persists the result. The read-modify-write must be
	// atomic: two concurrent toggles of the same like may never lose
	// an update. Returns ErrNotFound for an unknown id. If fn returns
	// an error the mutation is abandoned, nothing is persisted, and
	// that error is returned unchanged.
	Mutate(ctx context.Context, id string, fn func(*Message) error) (*Message, error)

	// Close releases any underlying resources.
	Close() error
}
