package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marchRange() (time.Time, time.Time) {
	return datetime(2026, 3, 1, 0, 0), datetime(2026, 3, 31, 0, 0)
}

func TestBookingSet_MidnightSplit(t *testing.T) {
	from, to := marchRange()
	s := NewBookingSet(from, to)

	// 23:30 to 00:30 crossing midnight: two contiguous fragments.
	s.Upsert(BookingRecord{ID: 1, StartAt: datetime(2026, 3, 9, 23, 30), DurationMins: 60, Weight: 1})

	days := s.Schedules()
	require.Len(t, days, 2)

	first := days[DayKey(datetime(2026, 3, 9, 0, 0))]
	second := days[DayKey(datetime(2026, 3, 10, 0, 0))]
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	assert.Equal(t, ExistingScheduling{TimeWindow: TimeWindow{Start: 1410, End: 1440}, Weight: 1}, first[0])
	assert.Equal(t, ExistingScheduling{TimeWindow: TimeWindow{Start: 0, End: 30}, Weight: 1}, second[0])

	// No gap or overlap at the boundary, total duration preserved.
	assert.Equal(t, MinutesPerDay, first[0].End)
	assert.Equal(t, 0, second[0].Start)
	assert.Equal(t, 60, first[0].Minutes()+second[0].Minutes())
}

func TestBookingSet_DefaultWeight(t *testing.T) {
	from, to := marchRange()
	s := NewBookingSet(from, to)
	s.Upsert(BookingRecord{ID: 1, StartAt: datetime(2026, 3, 9, 9, 0), DurationMins: 90})

	days := s.Schedules()
	frags := days[DayKey(datetime(2026, 3, 9, 0, 0))]
	require.Len(t, frags, 1)
	assert.Equal(t, 1.0, frags[0].Weight, "missing weight defaults to one seat")

	s.Upsert(BookingRecord{ID: 2, StartAt: datetime(2026, 3, 9, 9, 0), DurationMins: 90, Weight: 2.5})
	frags = s.Schedules()[DayKey(datetime(2026, 3, 9, 0, 0))]
	require.Len(t, frags, 2)
}

func TestBookingSet_ApplyEventStream(t *testing.T) {
	from, to := marchRange()
	s := NewBookingSet(from, to)
	day := DayKey(datetime(2026, 3, 9, 0, 0))

	rec := BookingRecord{ID: 5, StartAt: datetime(2026, 3, 9, 10, 0), DurationMins: 60, Weight: 1}
	assert.True(t, s.Apply(BookingEvent{Action: EventCreated, Record: rec}))
	require.Len(t, s.Schedules()[day], 1)

	// Duplicate delivery is idempotent.
	s.Apply(BookingEvent{Action: EventCreated, Record: rec})
	require.Len(t, s.Schedules()[day], 1)

	// Update replaces the previous fragments.
	rec.StartAt = datetime(2026, 3, 9, 14, 0)
	s.Apply(BookingEvent{Action: EventUpdated, Record: rec})
	frags := s.Schedules()[day]
	require.Len(t, frags, 1)
	assert.Equal(t, TimeWindow{Start: 840, End: 900}, frags[0].TimeWindow)

	// Delete removes exactly this record's fragments.
	assert.True(t, s.Apply(BookingEvent{Action: EventDeleted, Record: BookingRecord{ID: 5}}))
	assert.Empty(t, s.Schedules())
	assert.False(t, s.Apply(BookingEvent{Action: EventDeleted, Record: BookingRecord{ID: 5}}))
}

func TestBookingSet_IgnoresOutOfRange(t *testing.T) {
	from, to := marchRange()
	s := NewBookingSet(from, to)

	// A notification for a booking outside the tracked range is dropped,
	// not an error.
	changed := s.Apply(BookingEvent{Action: EventCreated, Record: BookingRecord{
		ID: 8, StartAt: datetime(2026, 6, 1, 10, 0), DurationMins: 60,
	}})
	assert.False(t, changed)
	assert.Empty(t, s.Schedules())

	// Unscheduled enrollment (no duration) contributes nothing.
	s.Apply(BookingEvent{Action: EventCreated, Record: BookingRecord{ID: 9, StartAt: datetime(2026, 3, 9, 10, 0)}})
	assert.Empty(t, s.Schedules())
}
