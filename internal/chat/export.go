// ABOUTME: Transcript export of the active conversation as plain text or HTML
// ABOUTME: Files are named <app>_Chat_<YYYY-MM-DD> with the date taken in UTC

package chat

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/2389/swavik-portal/internal/conversation"
)

// FormatTranscript renders messages as "[ROLE] time: text" lines, each
// followed by a "Sources: a, b" line when the message cites sources, with a
// blank line between messages.
func FormatTranscript(messages []conversation.Message) string {
	entries := make([]string, len(messages))
	for i, m := range messages {
		entry := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(m.Role)), m.Time, m.Text)
		if len(m.Sources) > 0 {
			entry += "\nSources: " + strings.Join(m.Sources, ", ")
		}
		entries[i] = entry
	}
	return strings.Join(entries, "\n\n")
}

// TranscriptFilename returns the export filename for the given extension.
func (s *Session) TranscriptFilename(ext string) string {
	return fmt.Sprintf("%s_Chat_%s.%s", s.appName, s.now().UTC().Format("2006-01-02"), ext)
}

// ExportTranscript writes the active conversation to dir as plain text and
// returns the file path.
func (s *Session) ExportTranscript(dir string) (string, error) {
	return s.writeExport(dir, "txt", []byte(FormatTranscript(s.store.ActiveLog())))
}

// ExportTranscriptHTML writes the active conversation to dir as an HTML page
// with assistant markdown rendered, and returns the file path.
func (s *Session) ExportTranscriptHTML(dir string) (string, error) {
	title := conversation.PlaceholderTitle
	if c, err := s.store.Get(s.store.ActiveID()); err == nil {
		title = c.Title
	}

	data, err := RenderTranscriptHTML(s.appName, title, s.store.ActiveLog())
	if err != nil {
		return "", err
	}
	return s.writeExport(dir, "html", data)
}

func (s *Session) writeExport(dir, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, s.TranscriptFilename(ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}

	s.logger.Info("transcript exported", "path", path)
	return path, nil
}

var transcriptTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.App}} · {{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; color: #1f2937; }
.msg { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 0.75rem; }
.user { background: #ede9fe; }
.assistant { background: #f3f4f6; }
.meta { font-size: 0.75rem; color: #6b7280; text-transform: uppercase; }
.sources { font-size: 0.75rem; color: #7c3aed; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Messages}}<div class="msg {{.Role}}">
<div class="meta">{{.Role}} · {{.Time}}</div>
{{.Body}}
{{if .Sources}}<div class="sources">Sources: {{.Sources}}</div>{{end}}
</div>
{{end}}</body>
</html>
`))

type htmlMessage struct {
	Role    string
	Time    string
	Body    template.HTML
	Sources string
}

// RenderTranscriptHTML renders messages as a standalone HTML page. Assistant
// text is converted from markdown; user text is escaped as-is.
func RenderTranscriptHTML(app, title string, messages []conversation.Message) ([]byte, error) {
	items := make([]htmlMessage, len(messages))
	for i, m := range messages {
		item := htmlMessage{
			Role:    string(m.Role),
			Time:    m.Time,
			Sources: strings.Join(m.Sources, ", "),
		}

		if m.Role == conversation.RoleAssistant {
			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(m.Text), &buf); err != nil {
				return nil, fmt.Errorf("converting message %d: %w", i, err)
			}
			item.Body = template.HTML(buf.String())
		} else {
			item.Body = template.HTML("<p>" + template.HTMLEscapeString(m.Text) + "</p>")
		}
		items[i] = item
	}

	var out bytes.Buffer
	err := transcriptTemplate.Execute(&out, struct {
		App      string
		Title    string
		Messages []htmlMessage
	}{App: app, Title: title, Messages: items})
	if err != nil {
		return nil, fmt.Errorf("rendering transcript: %w", err)
	}
	return out.Bytes(), nil
}
