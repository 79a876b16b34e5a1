// Package feed owns the in-memory notification collection, projects it
// through the active type filter, and keeps read state in step with the
// remote Notification Store.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/reltime"
)

// Labels for the acknowledgment control and the empty-state placeholder.
const (
	LabelMarkRead    = "Mark as Read"
	LabelRead        = "Read"
	EmptyPlaceholder = "No notifications found."
)

var (
	// ErrNotLoaded is returned by operations that need the collection
	// before the first successful Load.
	ErrNotLoaded = errors.New("notifications not loaded yet")

	// ErrAlreadyLoaded is returned by Load once the collection has been
	// populated; it is never reloaded within a session.
	ErrAlreadyLoaded = errors.New("notifications already loaded")

	// ErrLoadInProgress is returned by Load while another Load is running.
	ErrLoadInProgress = errors.New("notifications are being loaded")

	// ErrUnknownNotification is returned when an id is not in the collection.
	ErrUnknownNotification = errors.New("unknown notification")

	// ErrAlreadyRead is returned when acknowledging a read notification.
	ErrAlreadyRead = errors.New("notification already read")

	// ErrNothingUnread is returned by AcknowledgeAll when every
	// notification is already read.
	ErrNothingUnread = errors.New("no unread notifications")
)

// Store is the remote Notification Store.
type Store interface {
	// FetchAll returns the full collection in display order.
	FetchAll(ctx context.Context) ([]model.Notification, error)

	// MarkRead records a single notification as read.
	MarkRead(ctx context.Context, id model.ID) error

	// MarkAllRead records every notification of the user as read.
	MarkAllRead(ctx context.Context) error
}

// View is a display region the controller renders into. Render always
// receives a complete page and must not call back into the controller.
type View interface {
	Render(page Page)
}

// Card is the rendered form of one notification.
type Card struct {
	ID       model.ID
	Priority string
	Message  string
	Age      string
	Type     string

	// Action is the acknowledgment control label.
	Action string

	// Disabled is true once the notification is read.
	Disabled bool
}

// Page is a full rendering of the displayed view.
type Page struct {
	// Filter is the active type filter, FilterAll when unfiltered.
	Filter string

	// Cards holds one entry per displayed notification, in store order.
	Cards []Card

	// Placeholder is set when there are no cards to show.
	Placeholder string

	// Err is the most recent failure to surface, if any.
	Err error
}

// BuildCards renders notifications into cards, one per notification in
// input order, with relative times computed against now.
func BuildCards(list []model.Notification, now time.Time) []Card {
	cards := make([]Card, 0, len(list))
	for _, n := range list {
		c := Card{
			ID:       n.ID,
			Priority: n.Priority,
			Message:  n.Message,
			Age:      reltime.Format(n.Timestamp, now),
			Type:     n.Type,
			Action:   LabelMarkRead,
		}
		if n.Read {
			c.Action = LabelRead
			c.Disabled = true
		}
		cards = append(cards, c)
	}
	return cards
}

// FilterByType returns the notifications whose type equals typ, keeping
// their relative order. FilterAll (or an empty tag) returns list as is.
func FilterByType(list []model.Notification, typ string) []model.Notification {
	if typ == "" || typ == model.FilterAll {
		return list
	}

	var out []model.Notification
	for _, n := range list {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
