// Package app is the root Bubble Tea model of the notification center.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/ui"
	"github.com/nhle/notifeed/internal/ui/feedview"
	helpview "github.com/nhle/notifeed/internal/ui/help"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewFeed ViewState = iota
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing and
// layout around the feed controller.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	ctrl        *feed.Controller
	keys        *KeyMap
	feedView    feedview.Model
	helpView    helpview.Model
	ready       bool
}

// New creates the root model. ctrl must render into board.
func New(ctx context.Context, ctrl *feed.Controller, board *feedview.Board) Model {
	keys := DefaultKeyMap()
	return Model{
		currentView: ViewFeed,
		layout:      ui.NewLayout(80, 24),
		ctrl:        ctrl,
		keys:        keys,
		feedView:    feedview.New(ctx, ctrl, board, keys, 80, 21),
		helpView:    helpview.New(keys, 80, 21),
	}
}

// Run starts the interactive program and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, ctrl *feed.Controller, board *feedview.Board) error {
	p := tea.NewProgram(
		New(ctx, ctrl, board),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running notification center: %w", err)
	}
	return nil
}

// Init starts the feed load.
func (m Model) Init() tea.Cmd {
	return m.feedView.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.feedView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.helpView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = ViewFeed
			} else {
				m.currentView = ViewHelp
			}
			return m, nil
		}
		if m.currentView == ViewHelp {
			if msg.Type == tea.KeyEsc {
				m.currentView = ViewFeed
			}
			return m, nil
		}
	}

	// Async results and ticks always reach the feed, even under the help
	// overlay.
	var cmd tea.Cmd
	m.feedView, cmd = m.feedView.Update(msg)
	return m, cmd
}

// View renders the full frame.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	header := m.layout.RenderHeader("Notifications", m.badge())
	filterBar := m.layout.RenderFilterBar(m.ctrl.Types(), m.ctrl.Filter())

	var content string
	if m.currentView == ViewHelp {
		content = m.helpView.WithTypes(m.ctrl.Types()).View()
	} else {
		content = m.feedView.View()
	}

	return m.layout.RenderWithFrame(header, filterBar, content, m.statusBar())
}

// badge returns the unread counter shown in the header.
func (m Model) badge() string {
	if !m.ctrl.Loaded() {
		return ""
	}
	n := m.ctrl.UnreadCount()
	if n == 0 {
		return "all read"
	}
	return fmt.Sprintf("%d new", n)
}

// statusBar shows the latest error, a transient status, or key hints.
func (m Model) statusBar() string {
	status, isErr := m.feedView.Status()
	if isErr {
		return m.layout.RenderError(status)
	}
	if status != "" {
		return m.layout.RenderStatusBar(status)
	}
	if m.currentView == ViewHelp {
		return m.layout.RenderStatusBar("? close help | esc back")
	}
	return m.layout.RenderStatusBar(m.helpView.ShortView())
}
