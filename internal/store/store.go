// ABOUTME: Store interface for the local key-value persistence port
// ABOUTME: Holds conversations, credentials, and session state for the assistant client

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key does not exist
var ErrNotFound = errors.New("not found")

// Well-known keys. Each is owned by exactly one component.
const (
	KeyConversations = "conversations"  // conversation.Store
	KeyUsers         = "users"          // auth.Directory
	KeySession       = "session"        // current session token (CLI)
	KeySessionSecret = "session_secret" // generated signing secret (CLI)
)

// Store defines the key-value operations the client persists through.
// Values are opaque bytes; callers choose their own encoding.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put inserts or replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists all stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store
	Close() error
}
