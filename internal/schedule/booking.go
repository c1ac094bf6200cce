package schedule

import "time"

// BookingRecord is an absolute reservation: an enrollment that starts at
// StartAt and runs for DurationMins.  Weight is the capacity the booking
// consumes; zero or negative weight is normalized to the default of one
// seat.
type BookingRecord struct {
	ID           uint64
	StartAt      time.Time
	DurationMins int
	Weight       float64
}

// EventAction tags a record-change notification from the backing store.
type EventAction string

const (
	EventCreated EventAction = "create"
	EventUpdated EventAction = "update"
	EventDeleted EventAction = "delete"
)

// BookingEvent is one change to a single booking record.  For deletes only
// Record.ID is meaningful.
type BookingEvent struct {
	Action EventAction
	Record BookingRecord
}

// BookingSet is the incrementally-updatable per-day view over bookings that
// overlap a tracked range.  Like AvailabilitySet it keys fragments by
// record ID: applying the same event twice leaves the set unchanged, and
// deleting a record removes exactly its previously emitted fragments
// without rescanning the full record set.
type BookingSet struct {
	from, to time.Time
	byRecord map[uint64][]DayWindow
	weight   map[uint64]float64
}

// NewBookingSet creates an empty set tracking bookings overlapping
// [from, to].
func NewBookingSet(from, to time.Time) *BookingSet {
	return &BookingSet{
		from:     from,
		to:       to,
		byRecord: make(map[uint64][]DayWindow),
		weight:   make(map[uint64]float64),
	}
}

// Apply folds one record event into the set and reports whether the set
// changed.  Creates and updates are the same operation (upsert); events for
// records outside the tracked range degrade to deletes, so late or
// re-delivered notifications are harmless.
func (s *BookingSet) Apply(ev BookingEvent) bool {
	if ev.Action == EventDeleted {
		return s.Delete(ev.Record.ID)
	}
	return s.Upsert(ev.Record)
}

// Upsert replaces the record's fragments with ones derived from its current
// start and duration.  Bookings with no start time or a non-positive
// duration contribute nothing.
func (s *BookingSet) Upsert(rec BookingRecord) bool {
	end := rec.StartAt.Add(time.Duration(rec.DurationMins) * time.Minute)
	if rec.DurationMins <= 0 || rec.StartAt.After(s.to) || end.Before(s.from) {
		return s.Delete(rec.ID)
	}
	weight := rec.Weight
	if weight <= 0 {
		weight = 1
	}
	s.byRecord[rec.ID] = SplitByDay(rec.StartAt, end)
	s.weight[rec.ID] = weight
	return true
}

// Delete removes the record's fragments.  Returns true when the record was
// present.
func (s *BookingSet) Delete(id uint64) bool {
	if _, ok := s.byRecord[id]; !ok {
		return false
	}
	delete(s.byRecord, id)
	delete(s.weight, id)
	return true
}

// Schedules groups the current fragments into per-day occupied intervals.
func (s *BookingSet) Schedules() map[int64][]ExistingScheduling {
	days := make(map[int64][]ExistingScheduling)
	for id, frags := range s.byRecord {
		for _, f := range frags {
			days[f.Day] = append(days[f.Day], ExistingScheduling{
				TimeWindow: f.Window,
				Weight:     s.weight[id],
			})
		}
	}
	return days
}
