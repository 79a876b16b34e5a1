package help

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/notifeed/internal/keys"
)

func TestViewListsBindings(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 40)

	out := m.View()

	assert.Contains(t, out, "Keyboard Shortcuts")
	assert.Contains(t, out, "mark as read")
	assert.Contains(t, out, "mark all read")
	assert.Contains(t, out, "filter by type")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "LOW")
}

func TestViewMapsDigitsToTypes(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 40).WithTypes([]string{"SECURITY", "TRANSACTION"})

	out := m.View()

	assert.Contains(t, out, "Type filters")
	assert.Contains(t, out, "SECURITY")
	assert.Contains(t, out, "TRANSACTION")
	assert.NotContains(t, out, "more")
}

func TestViewCapsDigitTypes(t *testing.T) {
	types := make([]string, 11)
	for i := range types {
		types[i] = fmt.Sprintf("T%02d", i)
	}
	m := New(keys.DefaultKeyMap(), 100, 60).WithTypes(types)

	out := m.View()

	assert.Contains(t, out, "T08")
	assert.NotContains(t, out, "T09")
	assert.Contains(t, out, "2 more")
}

func TestShortViewIsCompact(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 200, 30)

	out := m.ShortView()

	assert.Contains(t, out, "quit")
	assert.NotContains(t, out, "mark all read")
}
