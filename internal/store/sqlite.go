package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/notifeed/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// notificationRow is the database shape of a notification.
type notificationRow struct {
	ID        string    `db:"id"`
	Message   string    `db:"message"`
	Type      string    `db:"type"`
	Priority  string    `db:"priority"`
	Timestamp time.Time `db:"timestamp"`
	Read      bool      `db:"read"`
}

func (r notificationRow) toModel() model.Notification {
	return model.Notification{
		ID:        model.ID(r.ID),
		Message:   r.Message,
		Type:      r.Type,
		Priority:  r.Priority,
		Timestamp: r.Timestamp.UTC(),
		Read:      r.Read,
	}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every pooled connection to ":memory:" would otherwise get its own
	// empty database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// CreateNotification inserts n. A missing id is generated, a zero
// timestamp becomes the current time, and a missing priority defaults to
// MEDIUM. The stored record is returned.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = model.ID(uuid.New().String())
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	n.Timestamp = n.Timestamp.UTC()
	if n.Priority == "" {
		n.Priority = model.PriorityMedium
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, message, type, priority, timestamp, read)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID.String(), n.Message, n.Type, n.Priority, n.Timestamp, n.Read,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return &n, nil
}

// GetNotification retrieves a single notification by id.
func (s *SQLiteStore) GetNotification(
	ctx context.Context,
	id model.ID,
) (*model.Notification, error) {
	var row notificationRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, message, type, priority, timestamp, read
		FROM notifications WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification %s: %w", id, err)
	}

	n := row.toModel()
	return &n, nil
}

// ListNotifications returns notifications newest first.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	filter ListFilter,
) ([]model.Notification, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Type != "" && filter.Type != model.FilterAll {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.UnreadOnly {
		where = append(where, "read = 0")
	}

	query := "SELECT id, message, type, priority, timestamp, read FROM notifications"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// MarkNotificationRead sets read on a notification. Marking an already
// read notification succeeds.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id model.ID) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// MarkAllRead sets read on every unread notification and returns how many
// changed.
func (s *SQLiteStore) MarkAllRead(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE read = 0")
	if err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
