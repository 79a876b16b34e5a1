// Package feedview is the interactive notification list.
package feedview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/theme"
)

// RedrawInterval is how often relative times are refreshed.
var RedrawInterval = 30 * time.Second

// LoadedMsg is sent when the initial fetch finishes.
type LoadedMsg struct {
	Err error
}

// AckDoneMsg is sent when a mark-read request finishes.
type AckDoneMsg struct {
	ID  model.ID
	Err error
}

// AckAllDoneMsg is sent when a mark-all-read request finishes.
type AckAllDoneMsg struct {
	Err error
}

type redrawMsg time.Time

// Model is the notification list view component.
type Model struct {
	ctx     context.Context
	ctrl    *feed.Controller
	board   *Board
	keys    *keys.KeyMap
	spinner spinner.Model
	loading bool
	cursor  int
	status  string
	width   int
	height  int
}

// New creates the list view over ctrl, which must render into board.
func New(ctx context.Context, ctrl *feed.Controller, board *Board, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		board:   board,
		keys:    k,
		spinner: sp,
		loading: true,
		width:   width,
		height:  height,
	}
}

// Init starts the initial load, the spinner, and the redraw ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick, redrawTick())
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		m.cursor = 0
		if errors.Is(msg.Err, feed.ErrAlreadyLoaded) {
			m.status = "Already loaded"
		}
		return m, nil

	case AckDoneMsg:
		if msg.Err == nil {
			m.status = fmt.Sprintf("Marked %s as read", msg.ID)
		} else {
			m.status = ""
		}
		return m, nil

	case AckAllDoneMsg:
		if msg.Err == nil {
			m.status = "Marked all as read"
		} else {
			m.status = ""
		}
		return m, nil

	case redrawMsg:
		m.ctrl.Redraw()
		return m, redrawTick()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

// handleKeys processes navigation, acknowledgment, and filter keys.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	page, _ := m.board.Page()
	count := len(page.Cards)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < count-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.End):
		m.cursor = max(count-1, 0)

	case key.Matches(msg, m.keys.MarkRead):
		if m.cursor >= count || page.Cards[m.cursor].Disabled {
			return m, nil
		}
		id := page.Cards[m.cursor].ID
		done, err := m.ctrl.Acknowledge(m.ctx, id)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		return m, waitAck(id, done)

	case key.Matches(msg, m.keys.MarkAllRead):
		done, err := m.ctrl.AcknowledgeAll(m.ctx)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		return m, waitAckAll(done)

	case key.Matches(msg, m.keys.FilterAll):
		m.applyFilter(model.FilterAll)

	case key.Matches(msg, m.keys.FilterType):
		types := m.ctrl.Types()
		n := int(msg.String()[0] - '0')
		if n >= 1 && n <= len(types) {
			m.applyFilter(types[n-1])
		}

	case key.Matches(msg, m.keys.CycleFilter):
		m.applyFilter(m.nextFilter())

	case key.Matches(msg, m.keys.Retry):
		if m.loading || m.ctrl.Loaded() {
			return m, nil
		}
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.load(), m.spinner.Tick)
	}

	return m, nil
}

func (m *Model) applyFilter(typ string) {
	if err := m.ctrl.FilterByType(typ); err != nil {
		m.status = err.Error()
		return
	}
	m.cursor = 0
	m.status = ""
}

// nextFilter returns the filter after the active one in the cycle
// ALL, first type, second type, ..., ALL.
func (m Model) nextFilter() string {
	cycle := append([]string{model.FilterAll}, m.ctrl.Types()...)
	current := m.ctrl.Filter()
	for i, f := range cycle {
		if f == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return model.FilterAll
}

// View renders the list view.
func (m Model) View() string {
	page, rendered := m.board.Page()

	if m.loading {
		return m.centered(m.spinner.View() + " Loading notifications...")
	}

	if !rendered {
		return ""
	}

	if !m.ctrl.Loaded() && page.Err != nil {
		return m.centered(fmt.Sprintf(
			"Could not load notifications.\n%s\n\nPress r to retry.",
			page.Err,
		))
	}

	if len(page.Cards) == 0 {
		return theme.PlaceholderStyle.Render(page.Placeholder)
	}

	visible := max(m.height/cardHeight, 1)
	cursor := min(m.cursor, len(page.Cards)-1)
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(page.Cards))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderCard(page.Cards[i], m.width, i == cursor))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) centered(s string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(s)
}

// Status returns the transient status line, or the error of the latest
// page when it carries one.
func (m Model) Status() (string, bool) {
	if page, _ := m.board.Page(); page.Err != nil {
		return page.Err.Error(), true
	}
	return m.status, false
}

// Loading reports whether the initial fetch is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Cursor returns the index of the focused card.
func (m Model) Cursor() int {
	return m.cursor
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// load returns a command that runs the one-time fetch.
func (m Model) load() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return LoadedMsg{Err: ctrl.Load(ctx)}
	}
}

func waitAck(id model.ID, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return AckDoneMsg{ID: id, Err: <-done}
	}
}

func waitAckAll(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return AckAllDoneMsg{Err: <-done}
	}
}

func redrawTick() tea.Cmd {
	return tea.Tick(RedrawInterval, func(t time.Time) tea.Msg {
		return redrawMsg(t)
	})
}
