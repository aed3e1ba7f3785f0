// ABOUTME: Dashboard, analytics, and document listings for the backend's stats and files
// ABOUTME: Uses lipgloss panels and tables sized for the terminal

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/2389/swavik-portal/internal/client"
)

const (
	// barWidth is the width of the longest analytics bar.
	barWidth = 40
	barRune  = "█"
)

// styles builds lipgloss styles bound to the renderer's writer so that
// color is dropped when the output is not a terminal.
type styles struct {
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	bar     lipgloss.Style
	panel   lipgloss.Style
	header  lipgloss.Style
}

func (r *Renderer) styles() styles {
	lr := lipgloss.NewRenderer(r.out)
	return styles{
		section: lr.NewStyle().Foreground(lipgloss.Color("141")).Bold(true),
		label:   lr.NewStyle().Foreground(lipgloss.Color("45")),
		value:   lr.NewStyle().Foreground(lipgloss.Color("231")).Bold(true),
		dim:     lr.NewStyle().Foreground(lipgloss.Color("245")),
		bar:     lr.NewStyle().Foreground(lipgloss.Color("135")),
		panel: lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 2),
		header: lr.NewStyle().Foreground(lipgloss.Color("141")).Bold(true).Padding(0, 1),
	}
}

// Stats writes the dashboard counters.
func (r *Renderer) Stats(s *client.Stats) {
	st := r.styles()

	var b strings.Builder
	b.WriteString(st.section.Render("┃ Dashboard") + "\n")
	fmt.Fprintf(&b, "%s %s\n", st.label.Render("Documents:"), st.value.Render(fmt.Sprint(s.TotalDocs)))
	fmt.Fprintf(&b, "%s %s\n", st.label.Render("Queries:  "), st.value.Render(fmt.Sprint(s.Queries)))
	fmt.Fprintf(&b, "%s %s", st.label.Render("Accuracy: "), st.value.Render(fmt.Sprintf("%g%%", s.Accuracy)))

	fmt.Fprintln(r.out, st.panel.Render(b.String()))
}

// Analytics writes a horizontal bar chart of the weekly query volume.
func (r *Renderer) Analytics(points []client.ChartPoint) {
	st := r.styles()

	fmt.Fprintln(r.out, st.section.Render("┃ Queries per day"))
	if len(points) == 0 {
		fmt.Fprintln(r.out, st.dim.Render("  no data"))
		return
	}

	peak, nameWidth := 0, 0
	for _, p := range points {
		peak = max(peak, p.Queries)
		nameWidth = max(nameWidth, lipgloss.Width(p.Name))
	}

	for _, p := range points {
		fmt.Fprintf(r.out, "  %s %s %s\n",
			st.label.Render(p.Name+strings.Repeat(" ", nameWidth-lipgloss.Width(p.Name))),
			st.bar.Render(strings.Repeat(barRune, barLength(p.Queries, peak))),
			st.dim.Render(fmt.Sprint(p.Queries)),
		)
	}
}

// barLength scales v against peak onto barWidth cells. Non-zero values get
// at least one cell.
func barLength(v, peak int) int {
	if v <= 0 || peak <= 0 {
		return 0
	}
	n := v * barWidth / peak
	if n == 0 {
		n = 1
	}
	return n
}

// Files writes the indexed documents as a table.
func (r *Renderer) Files(files []client.File) {
	st := r.styles()

	if len(files) == 0 {
		fmt.Fprintln(r.out, st.dim.Render("No documents indexed."))
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.dim).
		Headers("NAME", "SIZE", "UPLOADED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, f := range files {
		t.Row(f.Name, f.Size, f.Date)
	}

	fmt.Fprintln(r.out, t.Render())
}

// Health writes the backend's self-report.
func (r *Renderer) Health(h *client.HealthStatus, baseURL string) {
	st := r.styles()
	fmt.Fprintf(r.out, "%s %s %s\n",
		st.value.Render(h.Status),
		st.dim.Render(h.System),
		st.dim.Render("("+baseURL+")"),
	)
}
