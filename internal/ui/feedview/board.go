package feedview

import (
	"sync"

	"github.com/nhle/notifeed/internal/feed"
)

// Board is the feed.View behind the terminal list. The controller writes
// pages into it from any goroutine; the Bubble Tea model reads the latest
// one when it draws.
type Board struct {
	mu       sync.Mutex
	page     feed.Page
	rendered bool
}

var _ feed.View = (*Board)(nil)

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Render replaces the displayed page.
func (b *Board) Render(p feed.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = p
	b.rendered = true
}

// Page returns the latest page and whether any page was rendered yet.
func (b *Board) Page() (feed.Page, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page, b.rendered
}
