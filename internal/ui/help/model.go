// Package help renders the feed's shortcut overlay and status-bar hints.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/theme"
)

// maxTypeKeys is how many types the digit keys can reach.
const maxTypeKeys = 9

// Model is the help overlay. It lists the key bindings, which digit
// selects which notification type, and the priority colors.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	types  []string
	width  int
	height int
}

// New creates a help overlay sized to the content area.
func New(km *keys.KeyMap, width, height int) Model {
	m := Model{keys: km, help: help.New()}
	m.SetSize(width, height)
	return m
}

// WithTypes returns a copy that maps digit keys onto types, in the order
// the filter bar shows them.
func (m Model) WithTypes(types []string) Model {
	m.types = types
	return m
}

// View renders the overlay.
func (m Model) View() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	m.help.ShowAll = true
	sections := []string{
		heading.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		heading.Render("Type filters"),
		m.typeLegend(),
		"",
		heading.Render("Priorities"),
		priorityLegend(),
	}

	return theme.BorderStyle.
		Padding(1, 2).
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// ShortView renders the one-line hint shown in the status bar.
func (m Model) ShortView() string {
	m.help.ShowAll = false
	return m.help.View(m.keys)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = max(width-4, 0)
}

func (m Model) typeLegend() string {
	keyStyle := theme.HelpStyle
	lines := []string{keyStyle.Render("0/a") + " " + model.FilterAll}

	for i, typ := range m.types {
		if i == maxTypeKeys {
			lines = append(lines, keyStyle.Render("tab")+
				fmt.Sprintf(" %d more", len(m.types)-maxTypeKeys))
			break
		}
		lines = append(lines, keyStyle.Render(fmt.Sprintf("%d", i+1))+
			theme.TypeLabelStyle(typ).Render(typ))
	}
	return strings.Join(lines, "\n")
}

func priorityLegend() string {
	badges := make([]string, 0, 3)
	for _, p := range []string{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		badges = append(badges, theme.PriorityStyle(p).Render(p))
	}
	return strings.Join(badges, "  ")
}
