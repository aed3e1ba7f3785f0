// Package store provides the local key-value persistence port for the client.
//
// # Architecture
//
// Everything the client remembers between runs goes through the Store
// interface: the conversation list, the credential table, and the current
// session token. Values are opaque bytes; each owner picks its own encoding
// (all current owners use JSON).
//
// Two implementations exist:
//
//   - SQLiteStore: a single kv table in a SQLite file (the default driver)
//   - MockStore: an in-memory map, used by tests and the "memory" driver
//
// # Keys
//
// Keys are stable and versionless. Each key has exactly one owner:
//
//   - conversations: conversation.Store
//   - users: auth.Directory
//   - session, session_secret: the swavik CLI
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//
// Database file locations:
//
//   - Default: ~/.local/share/swavik/portal.db
//   - Testing: a file under t.TempDir()
//
// # Error Handling
//
// Get returns ErrNotFound for keys that were never written. Delete of a
// missing key succeeds. All methods accept context.Context for cancellation.
//
// # Testing
//
// Use NewMockStore() for unit tests:
//
//	kv := store.NewMockStore()
//	kv.PutErr = errors.New("disk full") // simulate write failures
package store
