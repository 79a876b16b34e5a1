package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/model"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the wall clock used for relative times.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger for load and acknowledgment failures.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRollback makes a failed mark-read restore the notification to
// unread. Without it the optimistic read state is kept. A notification
// that another request has since confirmed read is never restored.
func WithRollback(enabled bool) Option {
	return func(c *Controller) { c.rollback = enabled }
}

// Controller is the notification feed. It is safe for concurrent use;
// every mutation and every render happens under one lock so the view
// always reflects a consistent state.
type Controller struct {
	store    Store
	view     View
	log      *zap.Logger
	now      func() time.Time
	rollback bool

	mu        sync.Mutex
	all       []model.Notification
	confirmed map[model.ID]bool // read on the store, per a successful request
	filter    string
	loaded    bool
	loading   bool
}

// New creates a controller that reads from store and renders into view.
func New(store Store, view View, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		view:      view,
		log:       zap.NewNop(),
		now:       time.Now,
		filter:    model.FilterAll,
		confirmed: make(map[model.ID]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the full collection and renders it unfiltered. It
// succeeds at most once; a failed load renders an error page and may be
// retried.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.loaded:
		c.mu.Unlock()
		return ErrAlreadyLoaded
	case c.loading:
		c.mu.Unlock()
		return ErrLoadInProgress
	}
	c.loading = true
	c.mu.Unlock()

	items, err := c.store.FetchAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		err = fmt.Errorf("loading notifications: %w", err)
		c.log.Error("load failed", zap.Error(err))
		c.view.Render(Page{Filter: c.filter, Err: err})
		return err
	}

	c.all = append([]model.Notification(nil), items...)
	c.loaded = true
	c.filter = model.FilterAll
	c.log.Info("notifications loaded", zap.Int("count", len(c.all)))
	c.renderLocked(nil)
	return nil
}

// FilterByType re-renders the collection restricted to typ, or in full
// for model.FilterAll. It never touches the network.
func (c *Controller) FilterByType(typ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return ErrNotLoaded
	}

	if typ == "" {
		typ = model.FilterAll
	}
	c.filter = typ
	c.renderLocked(nil)
	return nil
}

// Redraw re-renders the current view so relative times catch up with
// the clock.
func (c *Controller) Redraw() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		c.renderLocked(nil)
	}
}

// Acknowledge marks id as read. The in-memory record flips and the view
// re-renders before the store is contacted, so the control is disabled
// immediately. The request then runs in the background; its outcome is
// delivered on the returned channel, which is closed afterwards.
func (c *Controller) Acknowledge(ctx context.Context, id model.ID) (<-chan error, error) {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return nil, ErrNotLoaded
	}

	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownNotification, id)
	}
	if c.all[i].Read {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRead, id)
	}

	c.all[i].Read = true
	c.renderLocked(nil)
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer close(done)

		err := c.store.MarkRead(ctx, id)
		if err != nil {
			err = fmt.Errorf("marking notification %s as read: %w", id, err)
			c.fail(err, []model.ID{id})
		} else {
			c.confirm([]model.ID{id})
		}
		done <- err
	}()

	return done, nil
}

// AcknowledgeAll marks every unread notification as read, optimistically
// and with a single store request. Notifications that are already read are
// left alone.
func (c *Controller) AcknowledgeAll(ctx context.Context) (<-chan error, error) {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return nil, ErrNotLoaded
	}

	var flipped []model.ID
	every := make([]model.ID, len(c.all))
	for i := range c.all {
		every[i] = c.all[i].ID
		if !c.all[i].Read {
			c.all[i].Read = true
			flipped = append(flipped, c.all[i].ID)
		}
	}
	if len(flipped) == 0 {
		c.mu.Unlock()
		return nil, ErrNothingUnread
	}
	c.renderLocked(nil)
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer close(done)

		err := c.store.MarkAllRead(ctx)
		if err != nil {
			err = fmt.Errorf("marking all notifications as read: %w", err)
			c.fail(err, flipped)
		} else {
			c.confirm(every)
		}
		done <- err
	}()

	return done, nil
}

// fail logs a failed mutation, optionally reverts the given records to
// unread, and re-renders with the error surfaced.
func (c *Controller) fail(err error, ids []model.ID) {
	c.log.Error("mark read failed",
		zap.Error(err),
		zap.Int("notifications", len(ids)),
		zap.Bool("rollback", c.rollback),
	)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rollback {
		for _, id := range ids {
			if c.confirmed[id] {
				continue
			}
			if i := c.indexLocked(id); i >= 0 {
				c.all[i].Read = false
			}
		}
	}
	c.renderLocked(err)
}

// confirm records ids as read on the store. A record that an earlier
// failure rolled back is flipped again and the view re-rendered.
func (c *Controller) confirm(ids []model.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for _, id := range ids {
		c.confirmed[id] = true
		if i := c.indexLocked(id); i >= 0 && !c.all[i].Read {
			c.all[i].Read = true
			changed = true
		}
	}
	if changed {
		c.renderLocked(nil)
	}
}

// Filter returns the active type filter.
func (c *Controller) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Loaded reports whether the collection has been populated.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Notifications returns a copy of the full collection.
func (c *Controller) Notifications() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Notification(nil), c.all...)
}

// UnreadCount returns the number of unread notifications.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, n := range c.all {
		if !n.Read {
			count++
		}
	}
	return count
}

// Types returns the distinct notification types in first-seen order.
func (c *Controller) Types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var types []string
	for _, n := range c.all {
		if !seen[n.Type] {
			seen[n.Type] = true
			types = append(types, n.Type)
		}
	}
	return types
}

// indexLocked returns the position of id in the collection, or -1.
func (c *Controller) indexLocked(id model.ID) int {
	for i := range c.all {
		if c.all[i].ID == id {
			return i
		}
	}
	return -1
}

// renderLocked derives the displayed view from the collection and the
// active filter and hands a full page to the view.
func (c *Controller) renderLocked(err error) {
	visible := FilterByType(c.all, c.filter)

	page := Page{
		Filter: c.filter,
		Cards:  BuildCards(visible, c.now()),
		Err:    err,
	}
	if len(page.Cards) == 0 {
		page.Placeholder = EmptyPlaceholder
	}
	c.view.Render(page)
}
