// ABOUTME: ChatSession runs one question/answer exchange at a time against the answer backend
// ABOUTME: Applies results to the conversation captured at send time and tracks per-message feedback

package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/2389/swavik-portal/internal/client"
	"github.com/2389/swavik-portal/internal/conversation"
)

// UnavailableText is the assistant message shown when the backend cannot answer.
const UnavailableText = "⚠️ Service temporarily unavailable."

// DefaultTimeLayout formats message timestamps as a 2-digit hour and minute.
const DefaultTimeLayout = "03:04 PM"

// Answerer is the answer backend as seen by a Session.
type Answerer interface {
	Chat(ctx context.Context, text string) (*client.ChatResponse, error)
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	AppName    string           // transcript filename prefix, default "Swavik"
	TimeLayout string           // message timestamp layout, default DefaultTimeLayout
	Now        func() time.Time // clock, default time.Now
	Logger     *slog.Logger
}

// Session orchestrates exchanges for the active conversation of a Store.
// At most one request is in flight; Submit and Regenerate share that gate
// and reject rather than queue.
type Session struct {
	mu       sync.Mutex
	draft    string
	awaiting bool

	store      *conversation.Store
	answerer   Answerer
	appName    string
	timeLayout string
	now        func() time.Time
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewSession creates a Session over store that asks answerer.
func NewSession(store *conversation.Store, answerer Answerer, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AppName == "" {
		opts.AppName = "Swavik"
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		store:      store,
		answerer:   answerer,
		appName:    opts.AppName,
		timeLayout: opts.TimeLayout,
		now:        opts.Now,
		logger:     opts.Logger.With("component", "chat"),
	}
}

// SetDraft records the query being composed.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the query being composed.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Awaiting reports whether a request is in flight.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Wait blocks until every in-flight request has been applied.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Submit sends text as a question in the active conversation. The user
// message is appended before Submit returns; the answer, or the unavailable
// notice, is appended to the same conversation when the backend replies and
// the returned channel is then closed. Blank text or a request already in
// flight is rejected with accepted=false and nothing changes.
func (s *Session) Submit(ctx context.Context, text string) (done <-chan struct{}, accepted bool) {
	if strings.TrimSpace(text) == "" {
		s.logger.Debug("rejecting blank query")
		return nil, false
	}
	if !s.begin() {
		s.logger.Debug("rejecting query, request in flight")
		return nil, false
	}

	s.mu.Lock()
	s.draft = ""
	s.mu.Unlock()

	id := s.store.ActiveID()
	if id == "" || len(s.store.ActiveLog()) == 0 {
		id = s.store.RenameFromFirstMessage(ctx, text)
	}

	userMsg := conversation.Message{
		Role: conversation.RoleUser,
		Text: text,
		Time: s.stamp(),
	}
	if _, err := s.store.AppendMessage(ctx, id, userMsg); err != nil {
		s.logger.Warn("appending user message failed", "conversation_id", id, "error", err)
		s.end()
		return nil, false
	}

	ch := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(ch)
		defer s.end()

		// No cancellation: the request runs to completion once issued.
		reqCtx := context.WithoutCancel(ctx)
		reply := conversation.Message{Role: conversation.RoleAssistant}

		resp, err := s.answerer.Chat(reqCtx, text)
		if err != nil {
			s.logger.Warn("chat request failed", "conversation_id", id, "error", err)
			reply.Text = UnavailableText
		} else {
			reply.Text = resp.Answer
			reply.Sources = resp.Sources
		}
		reply.Time = s.stamp()

		if _, err := s.store.AppendMessage(reqCtx, id, reply); err != nil {
			s.logResultDropped(id, err)
		}
	}()

	return ch, true
}

// Regenerate asks the most recent user question again and overwrites the
// assistant message at index with the new answer, keeping its position and
// role and clearing its feedback. When the backend fails the existing answer
// is kept. It is rejected when a request is in flight, index is not an
// assistant message, or the log has no user message.
func (s *Session) Regenerate(ctx context.Context, index int) (done <-chan struct{}, accepted bool) {
	if !s.begin() {
		s.logger.Debug("rejecting regenerate, request in flight")
		return nil, false
	}

	id := s.store.ActiveID()
	msgs := s.store.ActiveLog()
	if index < 0 || index >= len(msgs) || msgs[index].Role != conversation.RoleAssistant {
		s.logger.Debug("rejecting regenerate, not an assistant message", "index", index)
		s.end()
		return nil, false
	}

	query, ok := lastUserText(msgs)
	if !ok {
		s.logger.Debug("rejecting regenerate, no user message")
		s.end()
		return nil, false
	}

	ch := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(ch)
		defer s.end()

		reqCtx := context.WithoutCancel(ctx)
		resp, err := s.answerer.Chat(reqCtx, query)
		if err != nil {
			s.logger.Warn("regenerate failed, keeping previous answer", "conversation_id", id, "index", index, "error", err)
			return
		}

		stamp := s.stamp()
		_, _, err = s.store.UpdateMessage(reqCtx, id, index, func(m *conversation.Message) bool {
			if m.Role != conversation.RoleAssistant {
				return false
			}
			m.Text = resp.Answer
			m.Sources = resp.Sources
			m.Time = stamp
			m.Liked = conversation.FeedbackNone
			return true
		})
		if err != nil {
			s.logResultDropped(id, err)
		}
	}()

	return ch, true
}

// SetFeedback toggles the feedback on the assistant message at index:
// setting the value it already holds clears it. User messages, unknown
// indexes and invalid values are rejected and the message is unchanged.
func (s *Session) SetFeedback(ctx context.Context, index int, value conversation.Feedback) (conversation.Message, bool) {
	if value == conversation.FeedbackNone || !value.Valid() {
		return conversation.Message{}, false
	}

	id := s.store.ActiveID()
	if id == "" {
		return conversation.Message{}, false
	}

	msg, changed, err := s.store.UpdateMessage(ctx, id, index, func(m *conversation.Message) bool {
		if m.Role != conversation.RoleAssistant {
			return false
		}
		if m.Liked == value {
			m.Liked = conversation.FeedbackNone
		} else {
			m.Liked = value
		}
		return true
	})
	if err != nil {
		s.logger.Debug("feedback on missing conversation", "conversation_id", id, "error", err)
		return conversation.Message{}, false
	}
	return msg, changed
}

// begin claims the in-flight gate, reporting false when it is already held.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.awaiting {
		return false
	}
	s.awaiting = true
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaiting = false
}

func (s *Session) stamp() string {
	return s.now().Format(s.timeLayout)
}

func (s *Session) logResultDropped(id string, err error) {
	if errors.Is(err, conversation.ErrNotFound) {
		s.logger.Info("conversation deleted before answer arrived, dropping result", "conversation_id", id)
		return
	}
	s.logger.Warn("applying answer failed", "conversation_id", id, "error", err)
}

// lastUserText scans backward for the most recent user message.
func lastUserText(msgs []conversation.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == conversation.RoleUser {
			return msgs[i].Text, true
		}
	}
	return "", false
}
