// Package render draws portal output in the terminal.
//
// A Renderer writes conversation messages, the conversation list, the stats
// dashboard, the analytics chart and the document table to an io.Writer.
// Assistant answers are markdown and go through glamour when enabled; color
// is applied with fatih/color and lipgloss and disappears automatically when
// the writer is not a terminal.
package render
