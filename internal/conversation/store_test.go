// ABOUTME: Tests for the conversation Store
// ABOUTME: Verifies active-selection invariants, write-through persistence, and load fallbacks

package conversation

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/swavik-portal/internal/store"
)

func newTestStore(t *testing.T) (*Store, *store.MockStore) {
	t.Helper()
	kv := store.NewMockStore()
	s := NewStore(kv, nil)
	s.Load(context.Background())
	return s, kv
}

// reload builds a fresh Store over the same key-value data.
func reload(t *testing.T, kv *store.MockStore) *Store {
	t.Helper()
	s := NewStore(kv, nil)
	s.Load(context.Background())
	return s
}

func userMsg(text string) Message {
	return Message{Role: RoleUser, Text: text, Time: "10:00 AM"}
}

func TestStore_LoadEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Empty(t, s.ActiveID())
	assert.Empty(t, s.ActiveLog())
	assert.Empty(t, s.List())
}

func TestStore_LoadMalformed(t *testing.T) {
	kv := store.NewMockStore()
	require.NoError(t, kv.Put(context.Background(), store.KeyConversations, []byte(`{not json`)))

	s := reload(t, kv)

	assert.Empty(t, s.ActiveID())
	assert.Empty(t, s.List())
}

func TestStore_LoadSelectsFirst(t *testing.T) {
	kv := store.NewMockStore()
	persisted := `[
		{"id":"b","title":"Second","messages":[{"role":"user","text":"newer","time":"10:01 AM"}]},
		{"id":"a","title":"First","messages":null}
	]`
	require.NoError(t, kv.Put(context.Background(), store.KeyConversations, []byte(persisted)))

	s := reload(t, kv)

	assert.Equal(t, "b", s.ActiveID())
	require.Len(t, s.ActiveLog(), 1)
	assert.Equal(t, "newer", s.ActiveLog()[0].Text)

	a, err := s.Get("a")
	require.NoError(t, err)
	assert.NotNil(t, a.Messages)
}

func TestStore_LoadDropsInvalidEntries(t *testing.T) {
	kv := store.NewMockStore()
	persisted := `[{"id":"a","title":"one"},{"id":"","title":"blank"},{"id":"a","title":"dup"},null]`
	require.NoError(t, kv.Put(context.Background(), store.KeyConversations, []byte(persisted)))

	s := reload(t, kv)

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "one", list[0].Title)
}

func TestStore_CreatePrependsAndActivates(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	first := s.Create(ctx)
	second := s.Create(ctx)

	require.NotEqual(t, first, second)
	assert.Equal(t, second, s.ActiveID())

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, PlaceholderTitle, list[0].Title)
	assert.Empty(t, list[0].Messages)

	// Persisted immediately
	assert.Len(t, reload(t, kv).List(), 2)
}

func TestStore_SelectSwitchesLog(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	a := s.Create(ctx)
	_, err := s.AppendMessage(ctx, a, userMsg("in a"))
	require.NoError(t, err)

	b := s.Create(ctx)
	assert.Empty(t, s.ActiveLog())

	require.NoError(t, s.Select(ctx, a))
	assert.Equal(t, a, s.ActiveID())
	require.Len(t, s.ActiveLog(), 1)
	assert.Equal(t, "in a", s.ActiveLog()[0].Text)

	require.NoError(t, s.Select(ctx, b))
	assert.Empty(t, s.ActiveLog())

	// The log of a survived the round trip through storage
	got, err := reload(t, kv).Get(a)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestStore_SelectUnknown(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id := s.Create(ctx)

	err := s.Select(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, id, s.ActiveID())
}

func TestStore_DeleteActiveSelectsFirstRemaining(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	oldest := s.Create(ctx)
	_, err := s.AppendMessage(ctx, oldest, userMsg("oldest"))
	require.NoError(t, err)

	middle := s.Create(ctx)
	_, err = s.AppendMessage(ctx, middle, userMsg("middle"))
	require.NoError(t, err)

	newest := s.Create(ctx)
	require.NoError(t, s.Select(ctx, oldest))

	s.Delete(ctx, oldest)

	assert.Equal(t, newest, s.ActiveID())
	assert.Empty(t, s.ActiveLog())

	s.Delete(ctx, newest)

	assert.Equal(t, middle, s.ActiveID())
	require.Len(t, s.ActiveLog(), 1)
	assert.Equal(t, "middle", s.ActiveLog()[0].Text)
}

func TestStore_DeleteInactiveKeepsSelection(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a := s.Create(ctx)
	b := s.Create(ctx)

	s.Delete(ctx, a)

	assert.Equal(t, b, s.ActiveID())
	assert.Len(t, s.List(), 1)
}

func TestStore_DeleteLastClearsActive(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	id := s.Create(ctx)
	_, err := s.AppendMessage(ctx, id, userMsg("bye"))
	require.NoError(t, err)

	s.Delete(ctx, id)

	assert.Empty(t, s.ActiveID())
	assert.Empty(t, s.ActiveLog())
	assert.Empty(t, reload(t, kv).List())
}

func TestStore_DeleteUnknownIsNoop(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	id := s.Create(ctx)
	puts := kv.PutCount()

	s.Delete(ctx, "missing")

	assert.Equal(t, id, s.ActiveID())
	assert.Equal(t, puts, kv.PutCount())
}

func TestStore_RenameFromFirstMessage(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	id := s.Create(ctx)
	renamed := s.RenameFromFirstMessage(ctx, "A short question")

	assert.Equal(t, id, renamed)
	got, err := reload(t, kv).Get(id)
	require.NoError(t, err)
	assert.Equal(t, "A short question", got.Title)

	s.RenameFromFirstMessage(ctx, "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")
	got, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxx...", got.Title)
}

func TestStore_RenameCreatesWhenNoneActive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id := s.RenameFromFirstMessage(ctx, "What are the leave policies?")

	require.NotEmpty(t, id)
	assert.Equal(t, id, s.ActiveID())

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "What are the leave policies?", list[0].Title)
}

func TestStore_SyncActiveLog(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	id := s.Create(ctx)
	msgs := []Message{userMsg("one"), {Role: RoleAssistant, Text: "two", Sources: []string{"faq.csv"}}}

	s.SyncActiveLog(ctx, msgs)

	// Caller's slice is not aliased
	msgs[1].Sources[0] = "changed"

	got, err := reload(t, kv).Get(id)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, []string{"faq.csv"}, got.Messages[1].Sources)
}

func TestStore_SyncActiveLogWithoutActive(t *testing.T) {
	s, kv := newTestStore(t)

	s.SyncActiveLog(context.Background(), []Message{userMsg("orphan")})

	assert.Equal(t, 0, kv.PutCount())
}

func TestStore_AppendToDeletedConversation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id := s.Create(ctx)
	s.Delete(ctx, id)

	_, err := s.AppendMessage(ctx, id, userMsg("late"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_AppendToInactiveConversation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a := s.Create(ctx)
	b := s.Create(ctx)

	index, err := s.AppendMessage(ctx, a, userMsg("for a"))
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	// The active conversation is untouched
	assert.Equal(t, b, s.ActiveID())
	assert.Empty(t, s.ActiveLog())

	got, err := s.Get(a)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestStore_UpdateMessage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id := s.Create(ctx)
	_, err := s.AppendMessage(ctx, id, Message{Role: RoleAssistant, Text: "old"})
	require.NoError(t, err)

	msg, changed, err := s.UpdateMessage(ctx, id, 0, func(m *Message) bool {
		m.Text = "new"
		return true
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "new", msg.Text)
	assert.Equal(t, "new", s.ActiveLog()[0].Text)

	_, changed, err = s.UpdateMessage(ctx, id, 0, func(m *Message) bool {
		m.Text = "discarded"
		return false
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "new", s.ActiveLog()[0].Text)

	_, changed, err = s.UpdateMessage(ctx, id, 5, func(m *Message) bool { return true })
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_PersistFailureDoesNotSurface(t *testing.T) {
	s, kv := newTestStore(t)
	kv.PutErr = errors.New("quota exceeded")
	ctx := context.Background()

	id := s.Create(ctx)
	_, err := s.AppendMessage(ctx, id, userMsg("still works"))
	require.NoError(t, err)

	// In-memory state is still consistent
	assert.Equal(t, id, s.ActiveID())
	assert.Len(t, s.ActiveLog(), 1)
}

func TestStore_ActiveIDAlwaysValid(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var ids []string
	for step := range 500 {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			ids = append(ids, s.Create(ctx))
		case op == 1:
			_ = s.Select(ctx, ids[rng.Intn(len(ids))])
		default:
			s.Delete(ctx, ids[rng.Intn(len(ids))])
		}

		active := s.ActiveID()
		if active == "" {
			require.Empty(t, s.List(), "step %d: nothing active but conversations exist", step)
			continue
		}
		_, err := s.Get(active)
		require.NoError(t, err, "step %d: active id %q not in store", step, active)
	}
}

func TestStore_PublishesChanges(t *testing.T) {
	s, _ := newTestStore(t)
	b := NewBroadcaster(nil)
	defer b.Close()
	s.SetBroadcaster(b)
	ctx := context.Background()

	id := s.Create(ctx)
	changes, _ := b.Subscribe(t.Context(), id)

	_, err := s.AppendMessage(ctx, id, Message{Role: RoleAssistant, Text: "42"})
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, ChangeAppended, c.Kind)
		assert.Equal(t, 0, c.Index)
		assert.Equal(t, "42", c.Message.Text)
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}
}
