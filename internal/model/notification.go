package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyID is returned when a notification carries a null or empty id.
var ErrEmptyID = errors.New("notification id is empty")

// FilterAll is the type filter sentinel that selects every notification.
const FilterAll = "ALL"

// Notification types emitted by the banking backend. The store owns the
// enumeration; the feed treats any other value as an opaque tag.
const (
	TypeSecurity    = "SECURITY"
	TypeTransaction = "TRANSACTION"
	TypeAccount     = "ACCOUNT"
	TypePromotion   = "PROMOTION"
)

// Priority levels used for badge styling only.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// ID is an opaque notification identifier. The store may encode it as a
// JSON number or a JSON string; both decode to the same textual form.
type ID string

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts either a JSON string or a JSON number. Null and
// blank ids are rejected.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ErrEmptyID
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding notification id: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return ErrEmptyID
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("decoding notification id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Notification is a single alert shown in the feed. Everything except Read
// is immutable once received from the store.
type Notification struct {
	// ID is stable across fetches.
	ID ID `json:"id"`

	// Message is the display text.
	Message string `json:"message"`

	// Type is the category tag (e.g. SECURITY, TRANSACTION).
	Type string `json:"type"`

	// Priority is the severity tag (LOW, MEDIUM, HIGH).
	Priority string `json:"priority"`

	// Timestamp is when the notification was generated.
	Timestamp time.Time `json:"timestamp"`

	// Read is false until the user acknowledges the notification.
	Read bool `json:"read"`
}

// UnmarshalJSON decodes a notification, tolerating zone-less timestamps.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type alias Notification
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if n.ID == "" {
		return ErrEmptyID
	}

	if aux.Timestamp == "" {
		n.Timestamp = time.Time{}
		return nil
	}

	ts, err := ParseTimestamp(aux.Timestamp)
	if err != nil {
		return err
	}
	n.Timestamp = ts
	return nil
}

// localDateTimeLayout matches ISO-8601 local date-times without an offset.
// Fractional seconds are accepted by time.Parse even though the layout
// does not spell them out.
const localDateTimeLayout = "2006-01-02T15:04:05"

// ParseTimestamp parses an RFC 3339 timestamp, falling back to an ISO-8601
// local date-time interpreted in the local time zone.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(localDateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
