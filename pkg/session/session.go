// Package session remembers the accessibility trees a user has loaded.
//
// Every tree that loads successfully is saved as an [Entry] and becomes the
// latest one, so running the CLI without an input file, or reopening the
// web page, picks up where the user left off.
//
// Two backends implement [Store]:
//   - [FileStore]: JSON files under ~/.config/axnarrate/sessions/, for the CLI
//   - [RedisStore]: a shared Redis instance, for servers with several replicas
//
// Usage:
//
//	store, err := session.NewFileStore("")
//	entry, err := session.NewEntry(raw, "page.json", session.DefaultTTL)
//	err = store.Save(ctx, entry)
//
//	latest, err := store.Latest(ctx)
//	if errors.Is(err, session.ErrNotFound) {
//	    // nothing saved yet
//	}
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/axnarrate/pkg/cache"
)

// ErrNotFound is returned when an entry does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long a saved tree is kept.
const DefaultTTL = 30 * 24 * time.Hour

// Entry is a saved tree document.
type Entry struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Hash      string          `json:"hash"`
	Size      int             `json:"size"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Data      json.RawMessage `json:"data"`
}

// NewEntry wraps raw tree JSON in an entry with a fresh id. source
// describes where the tree came from ("stdin", a file name, "paste").
func NewEntry(raw []byte, source string, ttl time.Duration) (*Entry, error) {
	if !json.Valid(raw) {
		return nil, errors.New("session entry data is not valid JSON")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return &Entry{
		ID:        uuid.NewString(),
		Source:    source,
		Hash:      cache.Hash(raw),
		Size:      len(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Data:      append(json.RawMessage(nil), raw...),
	}, nil
}

// IsExpired reports whether the entry has outlived its TTL.
func (e *Entry) IsExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Store persists entries.
type Store interface {
	// Save stores e and makes it the latest entry.
	Save(ctx context.Context, e *Entry) error

	// Get returns the entry with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Entry, error)

	// Latest returns the most recently saved entry, or ErrNotFound.
	Latest(ctx context.Context) (*Entry, error)

	// List returns every live entry, newest first. Data is omitted.
	List(ctx context.Context) ([]*Entry, error)

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, id string) error

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	Close() error
}
