// Package sqlite implements the chat ledger on SQLite. One writer
// connection with WAL gives the per-message atomicity the ledger
// contract requires without any external locking.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akudrin/livecast-server/internal/chat"
)

// Ledger implements chat.Ledger for SQLite.
type Ledger struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

func applySchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS messages (
		id            TEXT PRIMARY KEY,
		room_id       TEXT NOT NULL,
		content       TEXT NOT NULL,
		author_id     TEXT NOT NULL,
		author_name   TEXT NOT NULL,
		author_avatar TEXT NOT NULL DEFAULT '',
		kind          TEXT NOT NULL DEFAULT 'user',
		reply_to_id   TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL,
		liked_by      TEXT NOT NULL DEFAULT '[]',
		pinned        BOOLEAN NOT NULL DEFAULT 0,
		highlighted   BOOLEAN NOT NULL DEFAULT 0,
		moderated     BOOLEAN NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, id);
	`
	_, err := db.Exec(query)
	return err
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

const messageColumns = `id, room_id, content, author_id, author_name, author_avatar,
	kind, reply_to_id, created_at, liked_by, pinned, highlighted, moderated`

// Save appends a message.
func (l *Ledger) Save(ctx context.Context, msg *chat.Message) error {
	likedBy, err := json.Marshal(msg.LikedBy)
	if err != nil {
		return fmt.Errorf("marshal liked_by: %w", err)
	}

	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = l.db.ExecContext(ctx, query,
		msg.ID, msg.RoomID, msg.Content, msg.AuthorID, msg.AuthorName, msg.AuthorAvatar,
		string(msg.Kind), msg.ReplyToID, msg.CreatedAt.UTC(), string(likedBy),
		msg.Pinned, msg.Highlighted, msg.Moderated,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// FindByRoom returns up to limit most recent messages, oldest first.
// Message ids are ULIDs, so ordering by id is ordering by creation time.
func (l *Ledger) FindByRoom(ctx context.Context, roomID string, limit int) ([]*chat.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE room_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query room messages: %w", err)
	}
	defer rows.Close()

	var newestFirst []*chat.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		newestFirst = append(newestFirst, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room messages: %w", err)
	}

	out := make([]*chat.Message, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		out = append(out, newestFirst[i])
	}
	return out, nil
}

// FindByID returns the message or chat.ErrNotFound.
func (l *Ledger) FindByID(ctx context.Context, id string) (*chat.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	msg, err := scanMessage(l.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", id, chat.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Mutate runs the read-modify-write inside a transaction. Combined
// with the single connection this makes the whole mutation one
// critical section, preserving the like-toggle invariant even when
// the ledger is shared across worker goroutines.
func (l *Ledger) Mutate(ctx context.Context, id string, fn func(*chat.Message) error) (*chat.Message, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	msg, err := scanMessage(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", id, chat.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := fn(msg); err != nil {
		return nil, err
	}

	likedBy, err := json.Marshal(msg.LikedBy)
	if err != nil {
		return nil, fmt.Errorf("marshal liked_by: %w", err)
	}

	update := `
		UPDATE messages
		SET liked_by = ?, pinned = ?, highlighted = ?, moderated = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, update, string(likedBy), msg.Pinned, msg.Highlighted, msg.Moderated, id); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate: %w", err)
	}

	msg.LikeCount = len(msg.LikedBy)
	return msg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*chat.Message, error) {
	var (
		msg       chat.Message
		kind      string
		createdAt time.Time
		likedBy   string
	)
	err := row.Scan(
		&msg.ID, &msg.RoomID, &msg.Content, &msg.AuthorID, &msg.AuthorName, &msg.AuthorAvatar,
		&kind, &msg.ReplyToID, &createdAt, &likedBy,
		&msg.Pinned, &msg.Highlighted, &msg.Moderated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}

	msg.Kind = chat.MessageKind(kind)
	msg.CreatedAt = createdAt.UTC()
	if err := json.Unmarshal([]byte(likedBy), &msg.LikedBy); err != nil {
		return nil, fmt.Errorf("unmarshal liked_by: %w", err)
	}
	msg.LikeCount = len(msg.LikedBy)
	return &msg, nil
}

var _ chat.Ledger = (*Ledger)(nil)
