package schedule

import (
	"time"
)

// DayKey normalizes an absolute time to local midnight and returns it as
// Unix milliseconds.  Every per-day map in this package is keyed by this
// value.
func DayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).UnixMilli()
}

// DayWindow is one per-day slice of an absolute interval: the day anchor
// (local midnight, Unix milliseconds) plus the minute window the interval
// occupies on that day.
type DayWindow struct {
	Day    int64
	Window TimeWindow
}

// SplitByDay cuts the absolute interval [start, end) at local day
// boundaries into one DayWindow per touched day, each clamped to
// [0, MinutesPerDay].  The windows are contiguous at midnight and their
// durations sum to the original interval's duration.  Intervals with
// end <= start yield nothing.
func SplitByDay(start, end time.Time) []DayWindow {
	if !start.Before(end) {
		return nil
	}
	var out []DayWindow
	y, m, d := start.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	for day.Before(end) {
		startMins := int(start.Sub(day) / time.Minute)
		if startMins < 0 {
			startMins = 0
		}
		endMins := int(end.Sub(day) / time.Minute)
		if endMins > MinutesPerDay {
			endMins = MinutesPerDay
		}
		if endMins > startMins {
			out = append(out, DayWindow{Day: day.UnixMilli(), Window: TimeWindow{Start: startMins, End: endMins}})
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// HoursRecord is an absolute testing_center_hours row: the center is open
// from Opens to Closes with Seats simultaneous places.
type HoursRecord struct {
	ID     uint64
	Opens  time.Time
	Closes time.Time
	Seats  int
}

// AvailabilitySet is a live, incrementally-updatable view over the
// testing-center open-hours records that overlap a tracked range.  It keys
// fragments by record ID, so re-processing a record (duplicate event
// delivery, updates) replaces its prior contribution instead of
// duplicating it.
type AvailabilitySet struct {
	from, to time.Time
	byRecord map[uint64][]DayWindow
	seats    map[uint64]int
}

// NewAvailabilitySet creates an empty set tracking records that overlap
// [from, to].  Records entirely outside the range are dropped on upsert.
func NewAvailabilitySet(from, to time.Time) *AvailabilitySet {
	return &AvailabilitySet{
		from:     from,
		to:       to,
		byRecord: make(map[uint64][]DayWindow),
		seats:    make(map[uint64]int),
	}
}

// relevant reports whether an absolute interval overlaps the tracked range.
// Mirrors the record-store filter: interval start or end inside the range,
// or range start or end inside the interval.
func (s *AvailabilitySet) relevant(start, end time.Time) bool {
	return !start.After(s.to) && !end.Before(s.from)
}

// Upsert replaces the record's contribution with fragments derived from its
// current opens/closes.  A record that no longer overlaps the tracked range
// is removed (stale updates degrade to deletes rather than erroring).
// Returns true when the set changed.
func (s *AvailabilitySet) Upsert(rec HoursRecord) bool {
	if !s.relevant(rec.Opens, rec.Closes) {
		return s.Delete(rec.ID)
	}
	s.byRecord[rec.ID] = SplitByDay(rec.Opens, rec.Closes)
	s.seats[rec.ID] = rec.Seats
	return true
}

// Delete removes exactly the fragments previously emitted for the record.
// Returns true when the record was present.
func (s *AvailabilitySet) Delete(id uint64) bool {
	if _, ok := s.byRecord[id]; !ok {
		return false
	}
	delete(s.byRecord, id)
	delete(s.seats, id)
	return true
}

// Windows groups the current fragments into per-day availability windows.
// The result is rebuilt on every call; callers must not retain it across
// updates.
func (s *AvailabilitySet) Windows() map[int64][]AvailabilityWindow {
	days := make(map[int64][]AvailabilityWindow)
	for id, frags := range s.byRecord {
		for _, f := range frags {
			days[f.Day] = append(days[f.Day], AvailabilityWindow{
				TimeWindow: f.Window,
				Seats:      s.seats[id],
			})
		}
	}
	return days
}
