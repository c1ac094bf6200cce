package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One window 07:00-20:00 with two seats, matching the center's usual day.
func openAllDay(seats int) []AvailabilityWindow {
	return []AvailabilityWindow{
		{TimeWindow: TimeWindow{Start: 420, End: 1200}, Seats: seats},
	}
}

func TestTimeline_SelectEmptyDay(t *testing.T) {
	tl := NewTimeline(openAllDay(2), nil, nil, 60)

	slot, err := tl.Select(420)
	require.NoError(t, err)
	assert.Equal(t, Slot{StartMins: 420, DurationMins: 60}, slot)
}

func TestTimeline_SelectAtCapacity(t *testing.T) {
	// One booking fully saturating both seats 07:00-08:00.
	existing := []ExistingScheduling{
		{TimeWindow: TimeWindow{Start: 420, End: 480}, Weight: 2},
	}
	tl := NewTimeline(openAllDay(2), existing, nil, 30)

	_, err := tl.Select(420)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	slot, err := tl.Select(480)
	require.NoError(t, err)
	assert.Equal(t, Slot{StartMins: 480, DurationMins: 30}, slot)
}

func TestTimeline_SelectShrinksAtWindowEnd(t *testing.T) {
	// Window ends at 15:00; a 60-minute request at 14:30 achieves 30.
	allowed := []AvailabilityWindow{
		{TimeWindow: TimeWindow{Start: 420, End: 900}, Seats: 2},
	}
	tl := NewTimeline(allowed, nil, nil, 60)

	slot, err := tl.Select(870)
	require.NoError(t, err)
	assert.Equal(t, Slot{StartMins: 870, DurationMins: 30}, slot)
}

func TestTimeline_SelectOutsideWindows(t *testing.T) {
	tl := NewTimeline(openAllDay(2), nil, nil, 60)

	_, err := tl.Select(300) // 05:00, before opening
	assert.ErrorIs(t, err, ErrOutOfWindow)

	tlEmpty := NewTimeline(nil, nil, nil, 60)
	_, err = tlEmpty.Select(600)
	assert.ErrorIs(t, err, ErrOutOfWindow)
}

func TestTimeline_AchievedDurationCapped(t *testing.T) {
	tl := NewTimeline(openAllDay(4), nil, nil, 120)
	for _, start := range tl.Slots() {
		slot, err := tl.Select(start)
		if err != nil {
			continue
		}
		assert.LessOrEqual(t, slot.DurationMins, tl.Duration)
		assert.Greater(t, slot.DurationMins, 0)
	}
}

func TestTimeline_OverlapCount(t *testing.T) {
	existing := []ExistingScheduling{
		{TimeWindow: TimeWindow{Start: 600, End: 720}, Weight: 1},
		{TimeWindow: TimeWindow{Start: 660, End: 780}, Weight: 1.5},
	}
	tl := NewTimeline(openAllDay(5), existing, nil, 60)

	// Inside a single non-split booking every cell reports its weight.
	for p := 600; p < 660; p += tl.CellMins {
		assert.Equal(t, 1.0, tl.OverlapCount(p), "at %d", p)
	}
	// Where the two bookings stack the weights sum.
	assert.Equal(t, 2.5, tl.OverlapCount(660))
	assert.Equal(t, 1.5, tl.OverlapCount(720))
	assert.Equal(t, 0.0, tl.OverlapCount(420))
}

func TestTimeline_MaxOverlapFollowsWindows(t *testing.T) {
	allowed := []AvailabilityWindow{
		{TimeWindow: TimeWindow{Start: 420, End: 720}, Seats: 2},
		{TimeWindow: TimeWindow{Start: 720, End: 1200}, Seats: 5},
	}
	tl := NewTimeline(allowed, nil, nil, 60)

	assert.Equal(t, 2, tl.MaxOverlap(420))
	assert.Equal(t, 5, tl.MaxOverlap(720))
	assert.Equal(t, 0, tl.MaxOverlap(300), "no covering window means zero capacity")
	assert.False(t, tl.IsTimeAllowed(300))
}

func TestTimeline_WouldExceedLooksAtWholeDuration(t *testing.T) {
	// Capacity blocked only in the middle of the requested run.
	existing := []ExistingScheduling{
		{TimeWindow: TimeWindow{Start: 480, End: 510}, Weight: 2},
	}
	tl := NewTimeline(openAllDay(2), existing, nil, 120)

	assert.True(t, tl.WouldExceedMaxOverlap(420), "saturated cell inside the run blocks the start")
	assert.False(t, tl.WouldExceedMaxOverlap(510))
	_, err := tl.Select(420)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestTimeline_Cells(t *testing.T) {
	existing := []ExistingScheduling{
		{TimeWindow: TimeWindow{Start: 420, End: 480}, Weight: 2},
	}
	owned := []OwnedScheduling{
		{TimeWindow: TimeWindow{Start: 600, End: 660}, Confirmed: true},
	}
	tl := NewTimeline(openAllDay(2), existing, owned, 30)

	cells := tl.Cells()
	require.Len(t, cells, (tl.EndMins-tl.StartMins)/tl.CellMins)

	byTime := make(map[int]Cell, len(cells))
	for _, c := range cells {
		byTime[c.TimeMins] = c
	}

	assert.Equal(t, colorOverCapacity, byTime[420].Color)
	assert.True(t, byTime[420].WouldExceed)
	assert.False(t, byTime[1190].WouldExceed)
	assert.True(t, byTime[600].Owned)
	assert.True(t, byTime[600].Confirmed)
	assert.False(t, byTime[700].Owned)

	// Hover preview paints the covered cells blue.
	tl.Hover(700)
	cells = tl.Cells()
	for _, c := range cells {
		if c.TimeMins >= 700 && c.TimeMins < 730 {
			assert.Equal(t, colorPreview, c.Color, "at %d", c.TimeMins)
		}
	}
	tl.ClearHover()
}

func TestTimeline_CellsBlockedOutsideWindows(t *testing.T) {
	tl := NewTimeline(openAllDay(2), nil, nil, 30)
	cells := tl.Cells()
	for _, c := range cells {
		if c.TimeMins < 420 {
			assert.Equal(t, colorBlocked, c.Color, "at %d", c.TimeMins)
			assert.False(t, c.Allowed)
		}
	}
}

func TestDefaultHeatmapColor(t *testing.T) {
	// Lower half darkens the yellow at fixed hue.
	assert.Equal(t, "hsl(52, 100%, 88%)", DefaultHeatmapColor(0, 0, 30))
	assert.Equal(t, "hsl(52, 100%, 50%)", DefaultHeatmapColor(15, 0, 30))
	// Upper half shifts hue toward orange-red at fixed lightness.
	assert.Equal(t, "hsl(33, 100%, 50%)", DefaultHeatmapColor(30, 0, 30))
	assert.Equal(t, "hsl(41, 100%, 50%)", DefaultHeatmapColor(24, 0, 30))
}
