package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`42`, "42"},
		{`"42"`, "42"},
		{`"6f1c2a"`, "6f1c2a"},
		{`9007199254740993`, "9007199254740993"},
	}

	for _, tt := range tests {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(tt.in), &id), tt.in)
		assert.Equal(t, tt.want, id)
	}
}

func TestIDUnmarshalRejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestIDUnmarshalRejectsEmpty(t *testing.T) {
	for _, in := range []string{`null`, `""`, `"  "`} {
		var id ID
		assert.ErrorIs(t, json.Unmarshal([]byte(in), &id), ErrEmptyID, in)
	}
}

func TestNotificationUnmarshalRequiresID(t *testing.T) {
	for _, in := range []string{
		`{"id":null,"message":"x"}`,
		`{"message":"x"}`,
	} {
		var n Notification
		assert.ErrorIs(t, json.Unmarshal([]byte(in), &n), ErrEmptyID, in)
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2025-03-14T12:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)))

	got, err = ParseTimestamp("2025-03-14T12:30:00.5")
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, 500*int(time.Millisecond), got.Nanosecond())

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestNotificationUnmarshal(t *testing.T) {
	var n Notification
	err := json.Unmarshal([]byte(`{
		"id": 3,
		"message": "You received $20 from bob",
		"type": "TRANSACTION",
		"priority": "MEDIUM",
		"timestamp": "2025-03-14T09:00:00Z",
		"read": true
	}`), &n)
	require.NoError(t, err)

	assert.Equal(t, Notification{
		ID:        "3",
		Message:   "You received $20 from bob",
		Type:      TypeTransaction,
		Priority:  PriorityMedium,
		Timestamp: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Read:      true,
	}, n)
}

func TestNotificationUnmarshalBadTimestamp(t *testing.T) {
	var n Notification
	err := json.Unmarshal([]byte(`{"id":1,"timestamp":"not a time"}`), &n)
	assert.Error(t, err)
}

func TestNotificationRoundTripKeepsTimestamp(t *testing.T) {
	in := Notification{ID: "x", Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Notification
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Timestamp.Equal(out.Timestamp))
}
