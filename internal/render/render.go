// ABOUTME: Terminal rendering of conversation messages and lists
// ABOUTME: Assistant markdown goes through glamour; roles and markers are colored with fatih/color

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/2389/swavik-portal/internal/conversation"
)

// Options configures a Renderer.
type Options struct {
	Markdown bool   // render assistant text as markdown
	Style    string // glamour style, default "dark"
}

// Renderer writes portal output to a terminal.
type Renderer struct {
	out      io.Writer
	markdown bool
	style    string

	user      *color.Color
	assistant *color.Color
	dim       *color.Color
	accent    *color.Color
	good      *color.Color
	bad       *color.Color
}

// New creates a Renderer writing to out.
func New(out io.Writer, opts Options) *Renderer {
	if opts.Style == "" {
		opts.Style = "dark"
	}
	return &Renderer{
		out:       out,
		markdown:  opts.Markdown,
		style:     opts.Style,
		user:      color.New(color.FgCyan, color.Bold),
		assistant: color.New(color.FgGreen, color.Bold),
		dim:       color.New(color.FgHiBlack),
		accent:    color.New(color.FgMagenta),
		good:      color.New(color.FgGreen),
		bad:       color.New(color.FgRed),
	}
}

// Message writes one message with its position in the log.
func (r *Renderer) Message(index int, m conversation.Message) {
	role := r.user
	if m.Role == conversation.RoleAssistant {
		role = r.assistant
	}

	header := fmt.Sprintf("%s %s %s",
		r.dim.Sprintf("[%d]", index),
		role.Sprint(strings.ToUpper(string(m.Role))),
		r.dim.Sprint(m.Time),
	)
	switch m.Liked {
	case conversation.FeedbackUp:
		header += " " + r.good.Sprint("👍")
	case conversation.FeedbackDown:
		header += " " + r.bad.Sprint("👎")
	}
	fmt.Fprintln(r.out, header)

	fmt.Fprintln(r.out, r.body(m))

	if len(m.Sources) > 0 {
		fmt.Fprintln(r.out, r.accent.Sprint("📎 Sources: "+strings.Join(m.Sources, ", ")))
	}
	fmt.Fprintln(r.out)
}

// body returns the message text, rendered as markdown for assistant
// messages when enabled. Rendering failures fall back to the plain text.
func (r *Renderer) body(m conversation.Message) string {
	if !r.markdown || m.Role != conversation.RoleAssistant {
		return m.Text
	}
	styled, err := glamour.Render(m.Text, r.style)
	if err != nil {
		return m.Text
	}
	return strings.TrimRight(styled, "\n")
}

// Log writes every message of a conversation log.
func (r *Renderer) Log(messages []conversation.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(r.out, r.dim.Sprint("No messages yet."))
		return
	}
	for i, m := range messages {
		r.Message(i, m)
	}
}

// Conversations writes the numbered conversation list, marking the active one.
func (r *Renderer) Conversations(list []conversation.Conversation, activeID string) {
	if len(list) == 0 {
		fmt.Fprintln(r.out, r.dim.Sprint("No conversations yet."))
		return
	}
	for i, c := range list {
		marker := "  "
		if c.ID == activeID {
			marker = r.assistant.Sprint("▶ ")
		}
		fmt.Fprintf(r.out, "%s%s %s %s\n",
			marker,
			r.dim.Sprintf("%d.", i+1),
			c.Title,
			r.dim.Sprintf("(%d messages)", len(c.Messages)),
		)
	}
}

// Thinking writes the placeholder shown while an answer is pending.
func (r *Renderer) Thinking() {
	fmt.Fprintln(r.out, r.dim.Sprint("… thinking"))
}

// Info writes a neutral status line.
func (r *Renderer) Info(format string, args ...any) {
	r.good.Fprint(r.out, "▶ ")
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Error writes an error line in the REPL's [error] format.
func (r *Renderer) Error(err error) {
	fmt.Fprintf(r.out, "%s %v\n", r.bad.Sprint("[error]"), err)
}
