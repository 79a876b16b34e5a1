package feedview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/theme"
)

// cardHeight is the number of lines a rendered card occupies, including
// the blank separator line.
const cardHeight = 4

// renderCard draws one notification:
//
//	HIGH SECURITY                     [Mark as Read]
//	New login from Berlin
//	30 seconds ago
func renderCard(c feed.Card, width int, selected bool) string {
	priority := theme.PriorityStyle(c.Priority).Render(c.Priority)
	typ := theme.TypeLabelStyle(c.Type).Render(c.Type)

	var action string
	if c.Disabled {
		action = theme.DisabledActionStyle.Render(c.Action)
	} else {
		action = theme.ActionStyle.Render(c.Action)
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top, priority, typ)
	gap := width - 3 - lipgloss.Width(left) - lipgloss.Width(action)
	if gap < 1 {
		gap = 1
	}
	top := left + strings.Repeat(" ", gap) + action

	msgStyle := theme.MessageStyle
	if c.Disabled {
		msgStyle = theme.ReadMessageStyle
	}
	message := msgStyle.Render(truncate(c.Message, width-3))
	age := theme.AgeStyle.Render(c.Age)

	body := lipgloss.JoinVertical(lipgloss.Left, top, message, age)
	if selected {
		return theme.SelectedCardStyle.Render(body)
	}
	return theme.CardStyle.Render(body)
}

// truncate shortens s to width cells, ending with an ellipsis.
func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
