// ABOUTME: Tests for the conversation change Broadcaster
// ABOUTME: Covers fan-out, isolation between conversations, slow consumers, and cleanup

package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appended(convID, text string) Change {
	return Change{
		ConversationID: convID,
		Kind:           ChangeAppended,
		Message:        Message{Role: RoleAssistant, Text: text},
	}
}

func TestBroadcaster_SubscribersReceiveSameChange(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := t.Context()

	ch1, _ := b.Subscribe(ctx, "conv-1")
	ch2, _ := b.Subscribe(ctx, "conv-1")

	b.Publish(appended("conv-1", "42"))

	for i, ch := range []<-chan Change{ch1, ch2} {
		select {
		case received := <-ch:
			assert.Equal(t, "42", received.Message.Text, "subscriber %d got wrong change", i)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBroadcaster_ConversationsAreIsolated(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := t.Context()

	ch1, _ := b.Subscribe(ctx, "conv-1")
	ch2, _ := b.Subscribe(ctx, "conv-2")

	b.Publish(appended("conv-1", "only for one"))

	select {
	case received := <-ch1:
		assert.Equal(t, "conv-1", received.ConversationID)
	case <-time.After(time.Second):
		t.Fatal("subscriber for conv-1 timed out")
	}

	select {
	case <-ch2:
		t.Fatal("subscriber for conv-2 should not receive changes for conv-1")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_SlowConsumerDoesNotBlockPublisher(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := t.Context()

	// Never read from the first subscription
	_, _ = b.Subscribe(ctx, "conv-1")
	ch2, _ := b.Subscribe(ctx, "conv-1")

	done := make(chan struct{})
	go func() {
		for range subscriberBufferSize * 2 {
			b.Publish(appended("conv-1", "x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}

	assert.Len(t, ch2, subscriberBufferSize)
}

func TestBroadcaster_ContextCancellationCleansUp(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, "conv-1")

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after context cancel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}

	b.mu.RLock()
	_, exists := b.subscribers["conv-1"]
	b.mu.RUnlock()
	assert.False(t, exists)
}

func TestBroadcaster_UnsubscribeThenPublish(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ch, subID := b.Subscribe(t.Context(), "conv-1")
	b.Unsubscribe("conv-1", subID)

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after unsubscribe must not panic
	b.Publish(appended("conv-1", "late"))
}

func TestBroadcaster_ConcurrentPublishSubscribe(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for range 10 {
		wg.Go(func() {
			ch, _ := b.Subscribe(ctx, "conv-concurrent")
			for range 5 {
				select {
				case <-ch:
				case <-time.After(200 * time.Millisecond):
					return
				}
			}
		})
	}

	for range 10 {
		wg.Go(func() {
			for range 10 {
				b.Publish(appended("conv-concurrent", "x"))
			}
		})
	}

	wg.Wait()
}

func TestBroadcaster_SubscribeReturnsUniqueIDs(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	_, id1 := b.Subscribe(t.Context(), "conv-1")
	_, id2 := b.Subscribe(t.Context(), "conv-1")

	require.NotEqual(t, id1, id2)
}
