package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestDayKey(t *testing.T) {
	morning := datetime(2026, 3, 9, 7, 30)
	evening := datetime(2026, 3, 9, 23, 59)
	nextDay := datetime(2026, 3, 10, 0, 0)

	assert.Equal(t, DayKey(morning), DayKey(evening))
	assert.NotEqual(t, DayKey(morning), DayKey(nextDay))
	assert.Equal(t, datetime(2026, 3, 9, 0, 0).UnixMilli(), DayKey(morning))
}

func TestAvailabilitySet_SingleDay(t *testing.T) {
	s := NewAvailabilitySet(datetime(2026, 3, 1, 0, 0), datetime(2026, 3, 31, 0, 0))
	s.Upsert(HoursRecord{
		ID:     1,
		Opens:  datetime(2026, 3, 9, 7, 0),
		Closes: datetime(2026, 3, 9, 20, 0),
		Seats:  12,
	})

	days := s.Windows()
	require.Len(t, days, 1)
	windows := days[DayKey(datetime(2026, 3, 9, 0, 0))]
	require.Len(t, windows, 1)
	assert.Equal(t, AvailabilityWindow{TimeWindow: TimeWindow{Start: 420, End: 1200}, Seats: 12}, windows[0])
}

func TestAvailabilitySet_SplitsAcrossDays(t *testing.T) {
	s := NewAvailabilitySet(datetime(2026, 3, 1, 0, 0), datetime(2026, 3, 31, 0, 0))
	// Open from Monday 22:00 through Wednesday 02:00: three fragments.
	s.Upsert(HoursRecord{
		ID:     7,
		Opens:  datetime(2026, 3, 9, 22, 0),
		Closes: datetime(2026, 3, 11, 2, 0),
		Seats:  4,
	})

	days := s.Windows()
	require.Len(t, days, 3)

	mon := days[DayKey(datetime(2026, 3, 9, 0, 0))]
	tue := days[DayKey(datetime(2026, 3, 10, 0, 0))]
	wed := days[DayKey(datetime(2026, 3, 11, 0, 0))]
	require.Len(t, mon, 1)
	require.Len(t, tue, 1)
	require.Len(t, wed, 1)

	assert.Equal(t, TimeWindow{Start: 1320, End: 1440}, mon[0].TimeWindow)
	assert.Equal(t, TimeWindow{Start: 0, End: 1440}, tue[0].TimeWindow)
	assert.Equal(t, TimeWindow{Start: 0, End: 120}, wed[0].TimeWindow)

	// Every fragment inherits the record's seat count.
	for _, w := range []AvailabilityWindow{mon[0], tue[0], wed[0]} {
		assert.Equal(t, 4, w.Seats)
	}

	// Fragment durations reconstruct the original 28-hour range.
	total := mon[0].Minutes() + tue[0].Minutes() + wed[0].Minutes()
	assert.Equal(t, 28*60, total)
}

func TestAvailabilitySet_UpsertReplaces(t *testing.T) {
	s := NewAvailabilitySet(datetime(2026, 3, 1, 0, 0), datetime(2026, 3, 31, 0, 0))
	rec := HoursRecord{ID: 3, Opens: datetime(2026, 3, 9, 7, 0), Closes: datetime(2026, 3, 9, 20, 0), Seats: 12}

	s.Upsert(rec)
	s.Upsert(rec) // duplicate delivery
	days := s.Windows()
	require.Len(t, days[DayKey(rec.Opens)], 1, "re-upserting the same record must not duplicate it")

	// An update moves the record's contribution entirely.
	rec.Opens = datetime(2026, 3, 10, 8, 0)
	rec.Closes = datetime(2026, 3, 10, 17, 0)
	s.Upsert(rec)
	days = s.Windows()
	assert.Empty(t, days[DayKey(datetime(2026, 3, 9, 0, 0))])
	require.Len(t, days[DayKey(datetime(2026, 3, 10, 0, 0))], 1)
}

func TestAvailabilitySet_DeleteRemovesOnlyOwnFragments(t *testing.T) {
	s := NewAvailabilitySet(datetime(2026, 3, 1, 0, 0), datetime(2026, 3, 31, 0, 0))
	s.Upsert(HoursRecord{ID: 1, Opens: datetime(2026, 3, 9, 7, 0), Closes: datetime(2026, 3, 9, 12, 0), Seats: 6})
	s.Upsert(HoursRecord{ID: 2, Opens: datetime(2026, 3, 9, 13, 0), Closes: datetime(2026, 3, 9, 20, 0), Seats: 6})

	assert.True(t, s.Delete(1))
	assert.False(t, s.Delete(1), "second delete is a no-op")

	days := s.Windows()
	windows := days[DayKey(datetime(2026, 3, 9, 0, 0))]
	require.Len(t, windows, 1)
	assert.Equal(t, TimeWindow{Start: 780, End: 1200}, windows[0].TimeWindow)
}

func TestAvailabilitySet_DropsRecordsOutsideRange(t *testing.T) {
	s := NewAvailabilitySet(datetime(2026, 3, 1, 0, 0), datetime(2026, 3, 31, 0, 0))
	s.Upsert(HoursRecord{ID: 9, Opens: datetime(2026, 5, 1, 7, 0), Closes: datetime(2026, 5, 1, 20, 0), Seats: 12})
	assert.Empty(t, s.Windows())

	// A previously tracked record that drifts out of range is removed.
	rec := HoursRecord{ID: 10, Opens: datetime(2026, 3, 9, 7, 0), Closes: datetime(2026, 3, 9, 20, 0), Seats: 12}
	s.Upsert(rec)
	require.Len(t, s.Windows(), 1)
	rec.Opens = datetime(2026, 5, 1, 7, 0)
	rec.Closes = datetime(2026, 5, 1, 20, 0)
	s.Upsert(rec)
	assert.Empty(t, s.Windows())
}
