// ABOUTME: In-memory fan-out of conversation changes to interested renderers
// ABOUTME: Publishes appended and updated messages to subscribers of a conversation id

package conversation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// ChangeKind describes what happened to a conversation.
type ChangeKind string

const (
	ChangeAppended ChangeKind = "appended" // a message was added at Index
	ChangeUpdated  ChangeKind = "updated"  // the message at Index was replaced
	ChangeRenamed  ChangeKind = "renamed"  // the title changed
	ChangeDeleted  ChangeKind = "deleted"  // the conversation is gone
)

// Change is published after the store has applied and persisted a mutation.
type Change struct {
	ConversationID string
	Kind           ChangeKind
	Index          int
	Message        Message
	Title          string
}

// Broadcaster provides in-memory pub/sub for conversation changes.
// Subscribers register for a conversation id and receive changes as they are
// applied. This lets a renderer show answers that land asynchronously.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Change // conversationID -> subID -> ch
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan Change),
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for changes to the given conversation.
// Returns a channel that receives changes and a subscription ID for later
// unsubscription. The subscription is automatically cleaned up when ctx is
// cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, conversationID string) (<-chan Change, string) {
	subID := uuid.New().String()
	ch := make(chan Change, subscriberBufferSize)

	b.mu.Lock()
	if _, ok := b.subscribers[conversationID]; !ok {
		b.subscribers[conversationID] = make(map[string]chan Change)
	}
	b.subscribers[conversationID][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added",
		"conversation_id", conversationID,
		"sub_id", subID)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(conversationID, subID)
	}()

	return ch, subID
}

// Publish sends a change to all subscribers of its conversation.
// Non-blocking: changes are dropped for subscribers whose channels are full.
func (b *Broadcaster) Publish(change Change) {
	b.mu.RLock()
	subs, ok := b.subscribers[change.ConversationID]
	if !ok || len(subs) == 0 {
		b.mu.RUnlock()
		return
	}

	// Send under the read lock so Unsubscribe cannot close a channel mid-send
	for _, ch := range subs {
		select {
		case ch <- change:
		default:
			b.logger.Debug("dropped change for slow subscriber",
				"conversation_id", change.ConversationID,
				"kind", change.Kind)
		}
	}
	b.mu.RUnlock()
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(conversationID, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[conversationID]
	if !ok {
		return
	}

	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	// Clean up empty conversation entries
	if len(subs) == 0 {
		delete(b.subscribers, conversationID)
	}

	b.logger.Debug("subscriber removed",
		"conversation_id", conversationID,
		"sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for convID, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, convID)
	}

	b.logger.Debug("broadcaster closed")
}
