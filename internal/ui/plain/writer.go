// Package plain renders feed pages as text for non-interactive output.
package plain

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/notifeed/internal/feed"
)

// Writer is a feed.View that prints every page it receives.
type Writer struct {
	out io.Writer
}

var _ feed.View = (*Writer)(nil)

// NewWriter returns a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Render prints the page as a table, or its placeholder when empty.
func (w *Writer) Render(p feed.Page) {
	if p.Err != nil {
		fmt.Fprintf(w.out, "error: %v\n", p.Err)
		if len(p.Cards) == 0 && p.Placeholder == "" {
			return
		}
	}

	fmt.Fprintf(w.out, "Filter: %s\n", p.Filter)

	if len(p.Cards) == 0 {
		fmt.Fprintln(w.out, p.Placeholder)
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PRIORITY", "TYPE", "MESSAGE", "AGE", "STATUS")
	for _, c := range p.Cards {
		t.Row(c.ID.String(), c.Priority, c.Type, c.Message, c.Age, c.Action)
	}
	fmt.Fprintln(w.out, t.String())
}
