package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/model"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// fakeStore is an in-memory Store. When gate is non-nil, mark-read calls
// block until it is closed, which lets tests observe the view while a
// request is in flight.
type fakeStore struct {
	mu           sync.Mutex
	items        []model.Notification
	fetchErr     error
	markErr      error
	gate         chan struct{}
	started      chan model.ID
	fetchCalls   int
	markCalls    []model.ID
	markAllCalls int
}

func (s *fakeStore) FetchAll(_ context.Context) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return append([]model.Notification(nil), s.items...), nil
}

func (s *fakeStore) MarkRead(_ context.Context, id model.ID) error {
	s.mu.Lock()
	s.markCalls = append(s.markCalls, id)
	gate, started, err := s.gate, s.started, s.markErr
	s.mu.Unlock()

	if started != nil {
		started <- id
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (s *fakeStore) MarkAllRead(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markAllCalls++
	return s.markErr
}

// recordingView keeps every page it is asked to render.
type recordingView struct {
	mu    sync.Mutex
	pages []Page
}

func (v *recordingView) Render(page Page) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pages = append(v.pages, page)
}

func (v *recordingView) last(t *testing.T) Page {
	t.Helper()
	v.mu.Lock()
	defer v.mu.Unlock()
	require.NotEmpty(t, v.pages, "nothing rendered")
	return v.pages[len(v.pages)-1]
}

func (v *recordingView) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pages)
}

func sampleNotifications() []model.Notification {
	return []model.Notification{
		{ID: "1", Message: "New login from Berlin", Type: model.TypeSecurity, Priority: model.PriorityHigh, Timestamp: testNow.Add(-30 * time.Second)},
		{ID: "2", Message: "You received $20 from bob", Type: model.TypeTransaction, Priority: model.PriorityMedium, Timestamp: testNow.Add(-5 * time.Minute)},
		{ID: "3", Message: "Password changed", Type: model.TypeSecurity, Priority: model.PriorityHigh, Timestamp: testNow.Add(-2 * time.Hour), Read: true},
		{ID: "4", Message: "You transferred $5 to alice", Type: model.TypeTransaction, Priority: model.PriorityMedium, Timestamp: testNow.Add(-48 * time.Hour)},
		{ID: "5", Message: "2% cashback this week", Type: model.TypePromotion, Priority: model.PriorityLow, Timestamp: testNow.Add(-72 * time.Hour)},
	}
}

func newLoaded(t *testing.T, store *fakeStore, opts ...Option) (*Controller, *recordingView) {
	t.Helper()
	view := &recordingView{}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	c := New(store, view, opts...)
	require.NoError(t, c.Load(context.Background()))
	return c, view
}

func cardIDs(cards []Card) []model.ID {
	ids := make([]model.ID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func TestLoadRendersFullCollectionInOrder(t *testing.T) {
	store := &fakeStore{items: sampleNotifications()}
	c, view := newLoaded(t, store)

	page := view.last(t)
	assert.Equal(t, model.FilterAll, page.Filter)
	assert.Equal(t, []model.ID{"1", "2", "3", "4", "5"}, cardIDs(page.Cards))
	assert.Empty(t, page.Placeholder)
	assert.NoError(t, page.Err)
	assert.True(t, c.Loaded())
	assert.Equal(t, 4, c.UnreadCount())
}

func TestLoadEmptyCollectionShowsPlaceholder(t *testing.T) {
	_, view := newLoaded(t, &fakeStore{})

	page := view.last(t)
	assert.Empty(t, page.Cards)
	assert.Equal(t, EmptyPlaceholder, page.Placeholder)
}

func TestLoadHappensOnce(t *testing.T) {
	store := &fakeStore{items: sampleNotifications()}
	c, _ := newLoaded(t, store)

	err := c.Load(context.Background())

	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Equal(t, 1, store.fetchCalls)
}

func TestLoadFailureRendersErrorAndCanRetry(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("connection refused")}
	view := &recordingView{}
	c := New(store, view)

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	page := view.last(t)
	assert.Error(t, page.Err)
	assert.Empty(t, page.Cards)
	assert.False(t, c.Loaded())

	store.fetchErr = nil
	store.items = sampleNotifications()
	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, view.last(t).Cards, 5)
}

func TestFilterByType(t *testing.T) {
	store := &fakeStore{items: sampleNotifications()}
	c, view := newLoaded(t, store)

	require.NoError(t, c.FilterByType(model.TypeSecurity))
	page := view.last(t)
	assert.Equal(t, model.TypeSecurity, page.Filter)
	assert.Equal(t, []model.ID{"1", "3"}, cardIDs(page.Cards))

	require.NoError(t, c.FilterByType(model.TypeTransaction))
	assert.Equal(t, []model.ID{"2", "4"}, cardIDs(view.last(t).Cards))

	require.NoError(t, c.FilterByType(model.FilterAll))
	assert.Equal(t, []model.ID{"1", "2", "3", "4", "5"}, cardIDs(view.last(t).Cards))

	assert.Equal(t, 1, store.fetchCalls, "filtering must not refetch")
}

func TestFilterByEveryPresentType(t *testing.T) {
	c, view := newLoaded(t, &fakeStore{items: sampleNotifications()})

	for _, typ := range c.Types() {
		require.NoError(t, c.FilterByType(typ))
		want := FilterByType(sampleNotifications(), typ)
		assert.Equal(t, BuildCards(want, testNow), view.last(t).Cards, typ)
	}
}

func TestFilterByUnknownTypeShowsPlaceholder(t *testing.T) {
	c, view := newLoaded(t, &fakeStore{items: sampleNotifications()})

	require.NoError(t, c.FilterByType(model.TypeAccount))

	page := view.last(t)
	assert.Empty(t, page.Cards)
	assert.Equal(t, EmptyPlaceholder, page.Placeholder)
}

func TestFilterIsIdempotent(t *testing.T) {
	c, view := newLoaded(t, &fakeStore{items: sampleNotifications()})

	require.NoError(t, c.FilterByType(model.TypeSecurity))
	first := view.last(t)
	require.NoError(t, c.FilterByType(model.TypeSecurity))
	second := view.last(t)

	assert.Equal(t, first, second)
}

func TestOperationsBeforeLoad(t *testing.T) {
	store := &fakeStore{items: sampleNotifications()}
	view := &recordingView{}
	c := New(store, view)

	assert.ErrorIs(t, c.FilterByType(model.TypeSecurity), ErrNotLoaded)

	_, err := c.Acknowledge(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = c.AcknowledgeAll(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)

	assert.Zero(t, view.count())
	assert.Empty(t, store.markCalls)
}

func TestAcknowledgeIsOptimistic(t *testing.T) {
	store := &fakeStore{
		items:   sampleNotifications(),
		gate:    make(chan struct{}),
		started: make(chan model.ID, 1),
	}
	c, view := newLoaded(t, store)

	done, err := c.Acknowledge(context.Background(), "1")
	require.NoError(t, err)

	// The request is still blocked in the store; the control must already
	// be disabled and relabeled.
	assert.Equal(t, model.ID("1"), <-store.started)
	card := view.last(t).Cards[0]
	assert.Equal(t, LabelRead, card.Action)
	assert.True(t, card.Disabled)
	assert.Equal(t, 3, c.UnreadCount())

	close(store.gate)
	assert.NoError(t, <-done)
	assert.Equal(t, []model.ID{"1"}, store.markCalls)
}

func TestAcknowledgeAtMostOnce(t *testing.T) {
	store := &fakeStore{items: sampleNotifications()}
	c, _ := newLoaded(t, store)

	done, err := c.Acknowledge(context.Background(), "2")
	require.NoError(t, err)

	_, err = c.Acknowledge(context.Background(), "2")
	assert.ErrorIs(t, err, ErrAlreadyRead)

	require.NoError(t, <-done)
	assert.Equal(t, []model.ID{"2"}, store.markCalls)
}

func TestAcknowledgeRejectsReadAndUnknown(t *testing.T) {
	store := &fakeStore{items: sampleNotifications()}
	c, _ := newLoaded(t, store)

	_, err := c.Acknowledge(context.Background(), "3")
	assert.ErrorIs(t, err, ErrAlreadyRead)

	_, err = c.Acknowledge(context.Background(), "404")
	assert.ErrorIs(t, err, ErrUnknownNotification)

	assert.Empty(t, store.markCalls)
}

func TestAcknowledgeKeepsStateAcrossFilters(t *testing.T) {
	c, view := newLoaded(t, &fakeStore{items: sampleNotifications()})

	done, err := c.Acknowledge(context.Background(), "1")
	require.NoError(t, err)
	require.NoError(t, <-done)

	require.NoError(t, c.FilterByType(model.TypeSecurity))
	page := view.last(t)
	require.Len(t, page.Cards, 2)
	assert.Equal(t, LabelRead, page.Cards[0].Action)
	assert.True(t, page.Cards[0].Disabled)
}

func TestAcknowledgeFailureWithoutRollback(t *testing.T) {
	store := &fakeStore{items: sampleNotifications(), markErr: errors.New("503")}
	c, view := newLoaded(t, store)

	done, err := c.Acknowledge(context.Background(), "1")
	require.NoError(t, err)

	ackErr := <-done
	require.Error(t, ackErr)

	page := view.last(t)
	assert.ErrorIs(t, page.Err, ackErr)
	assert.Equal(t, LabelRead, page.Cards[0].Action)
	assert.True(t, page.Cards[0].Disabled)
	assert.Equal(t, 3, c.UnreadCount())
}

func TestAcknowledgeFailureWithRollback(t *testing.T) {
	store := &fakeStore{items: sampleNotifications(), markErr: errors.New("503")}
	c, view := newLoaded(t, store, WithRollback(true))

	done, err := c.Acknowledge(context.Background(), "1")
	require.NoError(t, err)
	require.Error(t, <-done)

	page := view.last(t)
	assert.Error(t, page.Err)
	assert.Equal(t, LabelMarkRead, page.Cards[0].Action)
	assert.False(t, page.Cards[0].Disabled)
	assert.Equal(t, 4, c.UnreadCount())

	// A fresh user action may try again.
	store.markErr = nil
	done, err = c.Acknowledge(context.Background(), "1")
	require.NoError(t, err)
	assert.NoError(t, <-done)
}

func TestAcknowledgeAll(t *testing.T) {
	store := &fakeStore{items: sampleNotifications()}
	c, view := newLoaded(t, store)

	done, err := c.AcknowledgeAll(context.Background())
	require.NoError(t, err)

	for _, card := range view.last(t).Cards {
		assert.True(t, card.Disabled, card.ID)
	}
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.markAllCalls)
	assert.Zero(t, c.UnreadCount())

	_, err = c.AcknowledgeAll(context.Background())
	assert.ErrorIs(t, err, ErrNothingUnread)
	assert.Equal(t, 1, store.markAllCalls)
}

func TestAcknowledgeAllRollbackOnlyRevertsFlipped(t *testing.T) {
	store := &fakeStore{items: sampleNotifications(), markErr: errors.New("boom")}
	c, _ := newLoaded(t, store, WithRollback(true))

	done, err := c.AcknowledgeAll(context.Background())
	require.NoError(t, err)
	require.Error(t, <-done)

	for _, n := range c.Notifications() {
		assert.Equal(t, n.ID == "3", n.Read, n.ID)
	}
}

func TestRollbackSkipsNotificationConfirmedByMarkAll(t *testing.T) {
	store := &fakeStore{
		items:   sampleNotifications(),
		markErr: errors.New("503"),
		gate:    make(chan struct{}),
		started: make(chan model.ID, 1),
	}
	c, view := newLoaded(t, store, WithRollback(true))

	single, err := c.Acknowledge(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, model.ID("1"), <-store.started)

	store.mu.Lock()
	store.markErr = nil
	store.mu.Unlock()

	all, err := c.AcknowledgeAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-all)

	close(store.gate)
	require.Error(t, <-single)

	assert.Zero(t, c.UnreadCount())
	page := view.last(t)
	assert.Error(t, page.Err)
	assert.True(t, page.Cards[0].Disabled)
}

func TestTypesInFirstSeenOrder(t *testing.T) {
	c, _ := newLoaded(t, &fakeStore{items: sampleNotifications()})

	assert.Equal(t,
		[]string{model.TypeSecurity, model.TypeTransaction, model.TypePromotion},
		c.Types(),
	)
}

func TestSingleNotificationScenario(t *testing.T) {
	store := &fakeStore{items: []model.Notification{{
		ID: "1", Message: "A", Type: model.TypeSecurity,
		Priority: model.PriorityHigh, Timestamp: testNow.Add(-30 * time.Second),
	}}}
	c, view := newLoaded(t, store)

	page := view.last(t)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, LabelMarkRead, page.Cards[0].Action)
	assert.False(t, page.Cards[0].Disabled)
	assert.Equal(t, "30 seconds ago", page.Cards[0].Age)

	done, err := c.Acknowledge(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, LabelRead, view.last(t).Cards[0].Action)
	assert.True(t, view.last(t).Cards[0].Disabled)

	require.NoError(t, <-done)
	assert.Equal(t, []model.ID{"1"}, store.markCalls)
}

func TestRedrawRecomputesAges(t *testing.T) {
	now := testNow
	store := &fakeStore{items: sampleNotifications()[:1]}
	view := &recordingView{}
	c := New(store, view, WithClock(func() time.Time { return now }))
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, "30 seconds ago", view.last(t).Cards[0].Age)

	now = now.Add(2 * time.Minute)
	c.Redraw()
	assert.Equal(t, "2 minutes ago", view.last(t).Cards[0].Age)
}
