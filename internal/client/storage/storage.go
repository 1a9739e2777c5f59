// Package storage provides the persistent key-value store used to keep the
// session token and cached user record across restarts. It is a pure string
// map abstraction with interchangeable backends; the rest of the client
// depends only on the Store interface.
package storage

import (
	"context"
	"database/sql"
)

// Store is the platform store contract. Implementations report backend
// failures wrapped around common.ErrStorageUnavailable; callers treat any
// failure as "session could not be persisted/restored", never as fatal.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Open selects a backend by capability: the sqlite metadata table when a
// database handle is available, a JSON file when a path is given, and an
// in-memory map otherwise.
func Open(db *sql.DB, filePath string) Store {
	switch {
	case db != nil:
		return NewSQLiteStore(db)
	case filePath != "":
		return NewFileStore(filePath)
	default:
		return NewMemoryStore()
	}
}
