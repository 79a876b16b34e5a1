package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 17, NewLayout(80, 20).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 2).ContentHeight())
}

func TestRenderHeaderFillsWidth(t *testing.T) {
	l := NewLayout(60, 20)

	out := l.RenderHeader("Notifications", "3 new")

	assert.Contains(t, out, "Notifications")
	assert.Contains(t, out, "3 new")
	assert.Equal(t, 60, lipgloss.Width(out))
}

func TestRenderFilterBarListsAllFirst(t *testing.T) {
	l := NewLayout(80, 20)

	out := l.RenderFilterBar([]string{"SECURITY", "PROMOTION"}, "SECURITY")

	all := strings.Index(out, "ALL")
	sec := strings.Index(out, "SECURITY")
	promo := strings.Index(out, "PROMOTION")
	assert.True(t, all >= 0 && all < sec && sec < promo)
}

func TestRenderStatusBarFillsWidth(t *testing.T) {
	l := NewLayout(50, 20)

	assert.Equal(t, 50, lipgloss.Width(l.RenderStatusBar("q quit")))
	assert.Equal(t, 50, lipgloss.Width(l.RenderError("boom")))
}
