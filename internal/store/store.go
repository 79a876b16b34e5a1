// Package store persists notifications for the development Notification
// Store server.
package store

import (
	"context"
	"errors"

	"github.com/nhle/notifeed/internal/model"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("notification not found")

// ListFilter narrows ListNotifications.
type ListFilter struct {
	Type       string // empty or model.FilterAll for every type
	UnreadOnly bool
	Limit      int // zero for no limit
}

// Store defines the persistence interface behind the Notification Store
// REST API.
type Store interface {
	CreateNotification(ctx context.Context, n model.Notification) (*model.Notification, error)
	GetNotification(ctx context.Context, id model.ID) (*model.Notification, error)
	ListNotifications(ctx context.Context, filter ListFilter) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id model.ID) error
	MarkAllRead(ctx context.Context) (int64, error)
	Close() error
}
