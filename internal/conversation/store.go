// ABOUTME: ConversationStore owns the durable conversation list and the active selection
// ABOUTME: Every mutation writes the whole list through to the key-value port immediately

package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/2389/swavik-portal/internal/store"
)

// ErrNotFound is returned when a conversation id does not exist in the store
var ErrNotFound = errors.New("conversation not found")

// KeyValueStore defines what the conversation store needs from persistence
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store is the single source of truth for conversations. The active
// conversation's message log lives here too; there is no separate live copy
// to reconcile.
type Store struct {
	mu            sync.RWMutex
	kv            KeyValueStore
	logger        *slog.Logger
	broadcaster   *Broadcaster
	conversations []*Conversation // most recent first
	activeID      string          // "" when nothing is active
}

// NewStore creates an empty Store persisting through kv. Call Load to
// rehydrate previously saved conversations.
func NewStore(kv KeyValueStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger.With("component", "conversations"),
	}
}

// SetBroadcaster configures where applied changes are published.
func (s *Store) SetBroadcaster(b *Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// Load reads the persisted conversation list. Missing or malformed data
// yields an empty store; Load never fails. When conversations exist the
// first (most recent) one becomes active.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	s.activeID = ""

	data, err := s.kv.Get(ctx, store.KeyConversations)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("reading conversations failed, starting empty", "error", err)
		}
		return
	}

	var loaded []*Conversation
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("persisted conversations are malformed, starting empty", "error", err)
		return
	}

	seen := make(map[string]bool, len(loaded))
	for _, c := range loaded {
		if c == nil || c.ID == "" || seen[c.ID] {
			s.logger.Warn("skipping invalid persisted conversation")
			continue
		}
		seen[c.ID] = true
		if c.Messages == nil {
			c.Messages = []Message{}
		}
		s.conversations = append(s.conversations, c)
	}

	if len(s.conversations) > 0 {
		s.activeID = s.conversations[0].ID
	}

	s.logger.Debug("conversations loaded", "count", len(s.conversations), "active", s.activeID)
}

// Create starts a new empty conversation at the front of the list, makes it
// active, persists, and returns its id.
func (s *Store) Create(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.createLocked()
	s.persistLocked(ctx)
	return c.ID
}

func (s *Store) createLocked() *Conversation {
	c := &Conversation{
		ID:       uuid.New().String(),
		Title:    PlaceholderTitle,
		Messages: []Message{},
	}
	s.conversations = append([]*Conversation{c}, s.conversations...)
	s.activeID = c.ID

	s.logger.Debug("conversation created", "conversation_id", c.ID)
	return c
}

// Select makes id the active conversation and persists. The previous active
// log needs no flush because the store already holds it. Returns ErrNotFound
// and changes nothing when id is unknown.
func (s *Store) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) < 0 {
		return ErrNotFound
	}

	s.activeID = id
	s.persistLocked(ctx)
	return nil
}

// Delete removes the conversation and persists. When it was active, the new
// first conversation becomes active, or nothing when the list is empty.
// Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findLocked(id)
	if i < 0 {
		return
	}

	s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		}
	}

	s.persistLocked(ctx)
	s.publishLocked(Change{ConversationID: id, Kind: ChangeDeleted})
}

// RenameFromFirstMessage titles the active conversation after text (see
// TitleFromText), creating a conversation first when none is active.
// Returns the id of the renamed conversation.
func (s *Store) RenameFromFirstMessage(ctx context.Context, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c *Conversation
	if i := s.findLocked(s.activeID); i >= 0 {
		c = s.conversations[i]
	} else {
		c = s.createLocked()
	}

	c.Title = TitleFromText(text)
	s.persistLocked(ctx)
	s.publishLocked(Change{ConversationID: c.ID, Kind: ChangeRenamed, Title: c.Title})
	return c.ID
}

// SyncActiveLog replaces the active conversation's log with messages and
// persists immediately. It does nothing when no conversation is active.
func (s *Store) SyncActiveLog(ctx context.Context, messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findLocked(s.activeID)
	if i < 0 {
		return
	}

	s.conversations[i].Messages = cloneMessages(messages)
	if s.conversations[i].Messages == nil {
		s.conversations[i].Messages = []Message{}
	}
	s.persistLocked(ctx)
}

// AppendMessage adds msg to the end of conversation id's log and persists.
// It returns the new message's index, or ErrNotFound when the conversation
// no longer exists.
func (s *Store) AppendMessage(ctx context.Context, id string, msg Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findLocked(id)
	if i < 0 {
		return -1, ErrNotFound
	}

	c := s.conversations[i]
	c.Messages = append(c.Messages, msg.Clone())
	index := len(c.Messages) - 1

	s.persistLocked(ctx)
	s.publishLocked(Change{ConversationID: id, Kind: ChangeAppended, Index: index, Message: msg.Clone()})
	return index, nil
}

// UpdateMessage applies fn to the message at index in conversation id. When
// fn reports a change the store persists and publishes it. The returned
// message is a copy of the entry after fn ran; changed reports whether fn
// modified it. Out-of-range indexes leave the log untouched.
func (s *Store) UpdateMessage(ctx context.Context, id string, index int, fn func(*Message) bool) (msg Message, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findLocked(id)
	if i < 0 {
		return Message{}, false, ErrNotFound
	}

	c := s.conversations[i]
	if index < 0 || index >= len(c.Messages) {
		return Message{}, false, nil
	}

	updated := c.Messages[index].Clone()
	if !fn(&updated) {
		return c.Messages[index].Clone(), false, nil
	}

	c.Messages[index] = updated
	s.persistLocked(ctx)
	s.publishLocked(Change{ConversationID: id, Kind: ChangeUpdated, Index: index, Message: updated.Clone()})
	return updated.Clone(), true, nil
}

// ActiveID returns the active conversation id, or "" when none is active.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveLog returns a copy of the active conversation's messages. It is
// empty when nothing is active.
func (s *Store) ActiveLog() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findLocked(s.activeID)
	if i < 0 {
		return []Message{}
	}
	return cloneMessages(s.conversations[i].Messages)
}

// List returns copies of all conversations, most recent first.
func (s *Store) List() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findLocked(id)
	if i < 0 {
		return Conversation{}, ErrNotFound
	}
	return s.conversations[i].Clone(), nil
}

// findLocked returns the position of id, or -1. Must be called with mu held.
func (s *Store) findLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full list through to the key-value port. Write
// failures are logged and swallowed so callers never see them.
func (s *Store) persistLocked(ctx context.Context) {
	list := s.conversations
	if list == nil {
		list = []*Conversation{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		s.logger.Error("encoding conversations failed", "error", err)
		return
	}

	if err := s.kv.Put(ctx, store.KeyConversations, data); err != nil {
		s.logger.Warn("persisting conversations failed", "error", err, "count", len(list))
	}
}

// publishLocked forwards a change to the broadcaster, if any.
func (s *Store) publishLocked(change Change) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(change)
	}
}
