// Package conversation manages the client's catalog of chat conversations.
//
// # Overview
//
// A Conversation is a named, ordered log of Messages with a stable id. The
// Store keeps every conversation plus the id of the single active one, and
// writes the whole list through to a key-value port on every mutation.
//
// # Store
//
//	kv := store.NewMockStore()
//	convs := conversation.NewStore(kv, logger)
//	convs.Load(ctx) // never fails; bad data means an empty store
//
// Key operations:
//
//   - Create(ctx): new conversation at the front, made active
//   - Select(ctx, id): switch the active conversation
//   - Delete(ctx, id): remove; the next first entry becomes active
//   - RenameFromFirstMessage(ctx, text): title from the first user message
//   - SyncActiveLog(ctx, msgs): replace the active log wholesale
//   - AppendMessage / UpdateMessage: mutate the log of a specific id
//
// The Store is the single source of truth. There is no separate "live" log:
// the active conversation's messages are the live log, so switching
// conversations never needs a reconciliation step.
//
// # Invariants
//
//   - Conversation ids are unique (duplicates in persisted data are dropped).
//   - ActiveID() is "" or the id of an existing conversation.
//   - Message order is insertion order; UpdateMessage replaces in place.
//
// # Persistence
//
// The list is stored as a JSON array under the "conversations" key:
//
//	[{"id": "...", "title": "...", "messages": [{"role": "user", ...}]}]
//
// Write failures are logged and never returned. Older logs that name the
// assistant role "bot" are read as "assistant".
//
// # Change Broadcasting
//
// With SetBroadcaster, every applied append, update, rename, and delete is
// published to subscribers of that conversation id. Renderers use this to
// display answers that arrive asynchronously.
package conversation
