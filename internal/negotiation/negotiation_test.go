package negotiation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avereth/testing-center/internal/model"
	"github.com/avereth/testing-center/internal/queue"
	"github.com/avereth/testing-center/internal/schedule"
)

type fakeStore struct {
	enrollment model.TestEnrollment
	test       model.Test
	others     []model.TestEnrollment
	hours      []model.TestingCenterHours

	updateCalls int
	updateErr   error
}

func (f *fakeStore) GetWithTest(_ context.Context, id uint64) (model.TestEnrollment, model.Test, error) {
	return f.enrollment, f.test, nil
}

func (f *fakeStore) ListStartingBetween(_ context.Context, _, _ time.Time) ([]model.TestEnrollment, error) {
	return f.others, nil
}

func (f *fakeStore) UpdateSlot(_ context.Context, id uint64, startAt time.Time, durationMins int) (model.TestEnrollment, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return model.TestEnrollment{}, f.updateErr
	}
	e := f.enrollment
	e.StartTestAt = &startAt
	e.DurationMins = durationMins
	f.enrollment = e
	return e, nil
}

func (f *fakeStore) ListOverlapping(_ context.Context, _, _ time.Time) ([]model.TestingCenterHours, error) {
	return f.hours, nil
}

func tp(t time.Time) *time.Time { return &t }

// A one-day example: the center is open 07:00-20:00 with two seats, the
// test window is the same day, required duration one hour.
func exampleStore(day time.Time) *fakeStore {
	return &fakeStore{
		enrollment: model.TestEnrollment{ID: 1, TestID: 10},
		test: model.Test{
			ID:           10,
			DurationMins: 60,
			Opens:        tp(day.Add(7 * time.Hour)),
			Closes:       tp(day.Add(20 * time.Hour)),
		},
		hours: []model.TestingCenterHours{
			{ID: 100, Opens: day.Add(7 * time.Hour), Closes: day.Add(20 * time.Hour), Seats: 2},
		},
	}
}

func TestViewNotReadyWithoutBounds(t *testing.T) {
	store := &fakeStore{
		enrollment: model.TestEnrollment{ID: 1, TestID: 10},
		test:       model.Test{ID: 10, DurationMins: 60},
	}
	neg := New(store, store, nil)

	_, err := neg.View(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestUnlockDateOverridesTestOpen(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	store.enrollment.UnlocksAt = tp(day.Add(12 * time.Hour))
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	open, _ := v.Range()
	assert.True(t, open.Equal(day.Add(12*time.Hour)))
}

func TestProposeCommitRoundtrip(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	var published []queue.RecordEvent
	neg := New(store, store, func(_ context.Context, ev queue.RecordEvent) error {
		published = append(published, ev)
		return nil
	})

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	days := v.Days()
	require.Len(t, days, 1)

	slot, err := neg.Propose(v, days[0], 9*60)
	require.NoError(t, err)
	assert.Equal(t, schedule.Slot{StartMins: 9 * 60, DurationMins: 60}, slot)

	updated, err := neg.Confirm(context.Background(), v)
	require.NoError(t, err)
	require.NotNil(t, updated.StartTestAt)
	assert.True(t, updated.StartTestAt.Equal(day.Add(9*time.Hour)))
	assert.Equal(t, 60, updated.DurationMins)

	assert.Nil(t, v.Desired(), "proposal cleared after commit")
	require.Len(t, published, 1)
	assert.Equal(t, queue.ActionUpdate, published[0].Action)
	assert.Equal(t, queue.CollectionEnrollments, published[0].Collection)
}

func TestConfirmWithoutProposal(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	_, err = neg.Confirm(context.Background(), v)
	assert.ErrorIs(t, err, ErrNothingProposed)
	assert.Zero(t, store.updateCalls)
}

func TestFailedCommitKeepsProposal(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	store.updateErr = context.DeadlineExceeded
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	_, err = neg.Propose(v, v.Days()[0], 9*60)
	require.NoError(t, err)

	_, err = neg.Confirm(context.Background(), v)
	require.Error(t, err)
	assert.NotNil(t, v.Desired(), "proposal survives a failed commit for retry")
}

func TestShrinkDesiredDurationClamped(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	_, err = neg.Propose(v, v.Days()[0], 9*60)
	require.NoError(t, err)

	require.NoError(t, neg.SetDesiredMinutes(v, 30))
	assert.Equal(t, 30, v.Desired().Minutes)

	// Growing past the granted cap clamps back down.
	require.NoError(t, neg.SetDesiredMinutes(v, 240))
	assert.Equal(t, 60, v.Desired().Minutes)
}

func TestEventSaturatesCapacity(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	// Two other students land on 09:00 via broker events; both seats gone.
	for _, id := range []uint64{7, 8} {
		neg.HandleEvent(queue.EnrollmentEvent(queue.ActionCreate, model.TestEnrollment{
			ID:           id,
			TestID:       10,
			StartTestAt:  tp(day.Add(9 * time.Hour)),
			DurationMins: 60,
		}))
	}

	_, err = neg.Propose(v, v.Days()[0], 9*60)
	assert.ErrorIs(t, err, schedule.ErrCapacityExceeded)

	// One of them cancels; the seat frees up again.
	neg.HandleEvent(queue.DeleteEvent(queue.CollectionEnrollments, 7))
	_, err = neg.Propose(v, v.Days()[0], 9*60)
	assert.NoError(t, err)
}

func TestOwnUnlockChangeDiscardsView(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	changed, _ := v.Current()
	changed.UnlocksAt = tp(day.Add(12 * time.Hour))
	neg.HandleEvent(queue.EnrollmentEvent(queue.ActionUpdate, changed))

	// The new view picks up the moved open bound.
	store.enrollment.UnlocksAt = changed.UnlocksAt
	v2, err := neg.View(context.Background(), 1)
	require.NoError(t, err)
	open, _ := v2.Range()
	assert.True(t, open.Equal(day.Add(12*time.Hour)))
}

func TestTimelineCarriesOwnedOverlays(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	store.enrollment.StartTestAt = tp(day.Add(10 * time.Hour))
	store.enrollment.DurationMins = 60
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	tl := v.Timeline(v.Days()[0])
	require.Len(t, tl.Owned, 1)
	assert.True(t, tl.Owned[0].Confirmed)
	assert.Equal(t, schedule.TimeWindow{Start: 600, End: 660}, tl.Owned[0].TimeWindow)
}

func TestOwnUnlockClearedDiscardsView(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	store.enrollment.UnlocksAt = tp(day.Add(12 * time.Hour))
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	// The admin clears the personal unlock; the open bound falls back to
	// the test's, so the view must be rebuilt like any other bounds move.
	changed, _ := v.Current()
	changed.UnlocksAt = nil
	neg.HandleEvent(queue.EnrollmentEvent(queue.ActionUpdate, changed))

	store.enrollment.UnlocksAt = nil
	v2, err := neg.View(context.Background(), 1)
	require.NoError(t, err)
	require.NotSame(t, v, v2)
	open, _ := v2.Range()
	assert.True(t, open.Equal(day.Add(7*time.Hour)))
}

func TestConcurrentViewRefreshAndRead(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	store := exampleStore(day)
	store.enrollment.StartTestAt = tp(day.Add(10 * time.Hour))
	store.enrollment.DurationMins = 60
	neg := New(store, store, nil)

	v, err := neg.View(context.Background(), 1)
	require.NoError(t, err)

	// One goroutine keeps re-resolving the view (refreshing its records)
	// while another reads the snapshot the way the overview endpoint does.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = neg.View(context.Background(), 1)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			enr, _ := v.Current()
			if enr.Scheduled() {
				_ = enr.StartTestAt.Unix()
			}
		}
	}()
	wg.Wait()
}
