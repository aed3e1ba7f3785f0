// ABOUTME: Tests for transcript formatting and export files
// ABOUTME: Checks the exact plain-text layout, filenames, and HTML rendering

package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/swavik-portal/internal/client"
	"github.com/2389/swavik-portal/internal/conversation"
)

func TestFormatTranscript(t *testing.T) {
	messages := []conversation.Message{
		{Role: conversation.RoleUser, Text: "hi", Time: "10:00 AM"},
		{Role: conversation.RoleAssistant, Text: "hello", Time: "10:01 AM", Sources: []string{"faq"}},
	}

	got := FormatTranscript(messages)

	assert.Equal(t, "[USER] 10:00 AM: hi\n\n[ASSISTANT] 10:01 AM: hello\nSources: faq", got)
}

func TestFormatTranscript_MultipleSources(t *testing.T) {
	messages := []conversation.Message{
		{Role: conversation.RoleAssistant, Text: "see docs", Time: "09:00 AM", Sources: []string{"a.csv", "b.csv", "c.csv"}},
	}

	assert.Equal(t, "[ASSISTANT] 09:00 AM: see docs\nSources: a.csv, b.csv, c.csv", FormatTranscript(messages))
}

func TestFormatTranscript_EmptySourcesOmitted(t *testing.T) {
	messages := []conversation.Message{
		{Role: conversation.RoleAssistant, Text: UnavailableText, Time: "09:00 AM", Sources: []string{}},
	}

	assert.Equal(t, "[ASSISTANT] 09:00 AM: "+UnavailableText, FormatTranscript(messages))
}

func TestFormatTranscript_Empty(t *testing.T) {
	assert.Empty(t, FormatTranscript(nil))
}

func TestExportTranscript(t *testing.T) {
	ans := &fakeAnswerer{resp: &client.ChatResponse{Answer: "hello", Sources: []string{"faq"}}}
	s, _ := newTestSession(t, ans)
	seedExchange(t, s, "hi")

	dir := t.TempDir()
	path, err := s.ExportTranscript(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Swavik_Chat_2026-10-19.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[USER] 02:05 PM: hi\n\n[ASSISTANT] 02:05 PM: hello\nSources: faq", string(data))
}

func TestExportTranscript_CreatesDirectory(t *testing.T) {
	ans := &fakeAnswerer{resp: &client.ChatResponse{Answer: "ok"}}
	s, _ := newTestSession(t, ans)

	dir := filepath.Join(t.TempDir(), "exports", "october")
	path, err := s.ExportTranscript(dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestTranscriptFilename_AppNameAndUTCDate(t *testing.T) {
	cs := conversation.NewStore(nil, nil)
	s := NewSession(cs, nil, Options{AppName: "Acme", Now: func() time.Time { return fixedNow }})

	assert.Equal(t, "Acme_Chat_2026-10-19.html", s.TranscriptFilename("html"))
}

func TestExportTranscriptHTML(t *testing.T) {
	ans := &fakeAnswerer{resp: &client.ChatResponse{Answer: "**Twenty** days", Sources: []string{"leave.csv"}}}
	s, _ := newTestSession(t, ans)
	seedExchange(t, s, "<b>leave</b>?")

	path, err := s.ExportTranscriptHTML(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "Swavik_Chat_2026-10-19.html", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<strong>Twenty</strong> days")
	assert.Contains(t, html, "&lt;b&gt;leave&lt;/b&gt;?")
	assert.Contains(t, html, "Sources: leave.csv")
	assert.Contains(t, html, "<h1>&lt;b&gt;leave&lt;/b&gt;?</h1>")
}

func TestRenderTranscriptHTML_RawHTMLNotPassedThrough(t *testing.T) {
	messages := []conversation.Message{
		{Role: conversation.RoleAssistant, Text: "<script>alert(1)</script>", Time: "09:00 AM"},
	}

	data, err := RenderTranscriptHTML("Swavik", "t", messages)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<script>alert(1)</script>")
}

func TestExportTranscript_EmptyConversation(t *testing.T) {
	s, cs := newTestSession(t, &fakeAnswerer{})
	cs.Create(context.Background())

	path, err := s.ExportTranscript(t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
