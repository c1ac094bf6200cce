// Package negotiation orchestrates the scheduling engine for one
// enrollment: it resolves the bookable date range, keeps live per-day
// availability and booking views fed from snapshot queries plus broker
// record events, and commits a chosen slot back to the store.
package negotiation

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/avereth/testing-center/internal/model"
	"github.com/avereth/testing-center/internal/queue"
	"github.com/avereth/testing-center/internal/schedule"
)

// ErrNotReady is returned when an enrollment's test has no open/close
// bounds yet; nothing can be fetched or booked until it is published.
var ErrNotReady = errors.New("test has no scheduling window yet")

// ErrNothingProposed is returned by Confirm when no slot has been
// proposed on the view.
var ErrNothingProposed = errors.New("no proposed slot to confirm")

// rangePad guarantees that windows and bookings crossing midnight just
// outside the query range are still fetched.
const rangePad = 24 * time.Hour

// EnrollmentStore is the slice of the enrollment repository the
// negotiator needs.
type EnrollmentStore interface {
	GetWithTest(ctx context.Context, id uint64) (model.TestEnrollment, model.Test, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.TestEnrollment, error)
	UpdateSlot(ctx context.Context, id uint64, startAt time.Time, durationMins int) (model.TestEnrollment, error)
}

// HoursStore is the slice of the hours repository the negotiator needs.
type HoursStore interface {
	ListOverlapping(ctx context.Context, from, to time.Time) ([]model.TestingCenterHours, error)
}

// PublishFunc broadcasts a record event after a successful commit.
type PublishFunc func(ctx context.Context, ev queue.RecordEvent) error

// Negotiator owns the live scheduling views, one per enrollment being
// scheduled.  It is the single consumer of the record event stream: views
// register before their snapshot fetch runs, so no event in the gap is
// lost, and the aggregators' idempotent upserts make replays across the
// snapshot boundary harmless.
type Negotiator struct {
	enrollments EnrollmentStore
	hours       HoursStore
	publish     PublishFunc

	mu    sync.Mutex
	views map[uint64]*View
}

// New constructs a Negotiator.  publish may be nil when no broker is
// configured; commits then rely on the next snapshot fetch instead.
func New(enrollments EnrollmentStore, hours HoursStore, publish PublishFunc) *Negotiator {
	return &Negotiator{
		enrollments: enrollments,
		hours:       hours,
		publish:     publish,
		views:       make(map[uint64]*View),
	}
}

// View resolves (or refreshes) the live scheduling view for one
// enrollment.  The view is registered for event delivery before the
// snapshot queries run ("subscribe first, then fetch, then merge").
func (n *Negotiator) View(ctx context.Context, enrollmentID uint64) (*View, error) {
	enr, test, err := n.enrollments.GetWithTest(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	open, close, ok := resolveRange(enr, test)
	if !ok {
		return nil, ErrNotReady
	}

	n.mu.Lock()
	v := n.views[enrollmentID]
	if v != nil && v.open.Equal(open) && v.close.Equal(close) {
		// Bounds unchanged: keep the live sets, refresh the records.
		v.mu.Lock()
		v.enrollment = enr
		v.test = test
		v.mu.Unlock()
		n.mu.Unlock()
		return v, nil
	}
	// New view or the bounds moved: replace the view object.  Any
	// in-flight snapshot still merges into the old object, which is no
	// longer reachable from the map, so stale fetches cannot land here.
	v = &View{
		enrollment: enr,
		test:       test,
		open:       open,
		close:      close,
		avail:      schedule.NewAvailabilitySet(open.Add(-rangePad), close.Add(rangePad)),
		bookings:   schedule.NewBookingSet(open.Add(-rangePad), close.Add(rangePad)),
	}
	n.views[enrollmentID] = v
	n.mu.Unlock()

	if err := n.loadSnapshot(ctx, v); err != nil {
		n.mu.Lock()
		if n.views[enrollmentID] == v {
			delete(n.views, enrollmentID)
		}
		n.mu.Unlock()
		return nil, err
	}
	return v, nil
}

// Discard drops the live view for an enrollment, if any.
func (n *Negotiator) Discard(enrollmentID uint64) {
	n.mu.Lock()
	delete(n.views, enrollmentID)
	n.mu.Unlock()
}

// loadSnapshot fetches the hours and bookings overlapping the view's
// padded range and merges them into the already-subscribed sets.
func (n *Negotiator) loadSnapshot(ctx context.Context, v *View) error {
	from, to := v.open.Add(-rangePad), v.close.Add(rangePad)

	hours, err := n.hours.ListOverlapping(ctx, from, to)
	if err != nil {
		return err
	}
	booked, err := n.enrollments.ListStartingBetween(ctx, from, to)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for _, h := range hours {
		v.avail.Upsert(schedule.HoursRecord{ID: h.ID, Opens: h.Opens, Closes: h.Closes, Seats: h.Seats})
	}
	for _, e := range booked {
		if !e.Scheduled() {
			continue
		}
		v.bookings.Upsert(schedule.BookingRecord{ID: e.ID, StartAt: *e.StartTestAt, DurationMins: e.DurationMins})
	}
	return nil
}

// HandleEvent folds one broker record event into every live view.  Events
// for records outside a view's range are dropped by the aggregators.
// Plug this into queue.StartRecordConsumer.
func (n *Negotiator) HandleEvent(ev queue.RecordEvent) {
	n.mu.Lock()
	views := make([]*View, 0, len(n.views))
	ids := make([]uint64, 0, len(n.views))
	for id, v := range n.views {
		views = append(views, v)
		ids = append(ids, id)
	}
	n.mu.Unlock()

	for i, v := range views {
		if stale := v.applyEvent(ev); stale {
			// The view's own enrollment moved its bounds; rebuild on the
			// next request rather than serving a stale range.
			n.Discard(ids[i])
		}
	}
}

// Propose runs the click protocol for a cell on one day and, on success,
// stores the result as the view's proposed slot.  The achieved duration
// may be shorter than requested (the window ended early); it becomes the
// cap the student may edit the duration down from.
func (n *Negotiator) Propose(v *View, day int64, startMins int) (schedule.Slot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	slot, err := v.timelineLocked(day).Select(startMins)
	if err != nil {
		return schedule.Slot{}, err
	}
	startAt := time.UnixMilli(day).Add(time.Duration(slot.StartMins) * time.Minute)
	v.desired = &DesiredSlot{StartAt: startAt, Minutes: slot.DurationMins, MaxMinutes: slot.DurationMins}
	return slot, nil
}

// SetDesiredMinutes edits the proposed duration.  It clamps to the
// achievable cap; the student may shrink a slot but never grow it past
// what the engine granted.
func (n *Negotiator) SetDesiredMinutes(v *View, minutes int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.desired == nil {
		return ErrNothingProposed
	}
	if minutes < 1 {
		minutes = 1
	}
	if minutes > v.desired.MaxMinutes {
		minutes = v.desired.MaxMinutes
	}
	v.desired.Minutes = minutes
	return nil
}

// Confirm commits the proposed slot: one update of the enrollment's start
// timestamp and duration.  On success the proposal is cleared and the
// change broadcast; on failure the proposal is kept so the student can
// retry.
func (n *Negotiator) Confirm(ctx context.Context, v *View) (model.TestEnrollment, error) {
	v.mu.Lock()
	if v.desired == nil {
		v.mu.Unlock()
		return model.TestEnrollment{}, ErrNothingProposed
	}
	desired := *v.desired
	id := v.enrollment.ID
	v.mu.Unlock()

	updated, err := n.enrollments.UpdateSlot(ctx, id, desired.StartAt, desired.Minutes)
	if err != nil {
		return model.TestEnrollment{}, err // proposal intentionally kept
	}

	v.mu.Lock()
	v.enrollment = updated
	v.desired = nil
	v.bookings.Upsert(schedule.BookingRecord{ID: updated.ID, StartAt: desired.StartAt, DurationMins: desired.Minutes})
	v.mu.Unlock()

	if n.publish != nil {
		if err := n.publish(ctx, queue.EnrollmentEvent(queue.ActionUpdate, updated)); err != nil {
			log.Printf("negotiation: broadcast after commit failed: %v", err)
		}
	}
	return updated, nil
}

func resolveRange(enr model.TestEnrollment, test model.Test) (open, close time.Time, ok bool) {
	if test.Opens == nil || test.Closes == nil {
		return time.Time{}, time.Time{}, false
	}
	open = *test.Opens
	if enr.UnlocksAt != nil && enr.UnlocksAt.After(open) {
		open = *enr.UnlocksAt
	}
	return open, *test.Closes, true
}

// DesiredSlot is the student's in-progress selection: absolute start,
// edited duration and the achievable cap the engine granted.
type DesiredSlot struct {
	StartAt    time.Time
	Minutes    int
	MaxMinutes int
}

// View is the live scheduling state for one enrollment.  The enrollment
// and test records are refreshed by concurrent View() calls, so reads go
// through Current().
type View struct {
	mu         sync.Mutex
	enrollment model.TestEnrollment
	test       model.Test

	open, close time.Time

	avail    *schedule.AvailabilitySet
	bookings *schedule.BookingSet
	desired  *DesiredSlot
}

// Range returns the resolved bookable bounds.
func (v *View) Range() (time.Time, time.Time) { return v.open, v.close }

// Current returns a snapshot of the view's enrollment and test records.
func (v *View) Current() (model.TestEnrollment, model.Test) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enrollment, v.test
}

// Desired returns a copy of the proposed slot, or nil.
func (v *View) Desired() *DesiredSlot {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.desired == nil {
		return nil
	}
	d := *v.desired
	return &d
}

// applyEvent folds one record event into the view's sets.  Returns true
// when the view's own enrollment changed in a way that moves its bounds
// and the view must be rebuilt.
func (v *View) applyEvent(ev queue.RecordEvent) (stale bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Collection {
	case queue.CollectionHours:
		if ev.Action == queue.ActionDelete {
			v.avail.Delete(ev.Record.ID)
			return false
		}
		opens, closes, ok := ev.Record.HoursRecord()
		if !ok {
			return false
		}
		v.avail.Upsert(schedule.HoursRecord{ID: ev.Record.ID, Opens: opens, Closes: closes, Seats: ev.Record.Seats})
	case queue.CollectionEnrollments:
		if ev.Action == queue.ActionDelete {
			v.bookings.Delete(ev.Record.ID)
			return ev.Record.ID == v.enrollment.ID
		}
		if startAt, ok := ev.Record.StartAt(); ok {
			v.bookings.Upsert(schedule.BookingRecord{ID: ev.Record.ID, StartAt: startAt, DurationMins: ev.Record.DurationMins})
		} else {
			v.bookings.Delete(ev.Record.ID)
		}
		if ev.Record.ID == v.enrollment.ID {
			// Any update to the own enrollment can move the open bound,
			// whether it sets or clears the unlock instant.
			return true
		}
	}
	return false
}

// Days returns the sorted day anchors that have any availability.
func (v *View) Days() []int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	windows := v.avail.Windows()
	days := make([]int64, 0, len(windows))
	for day := range windows {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Timeline builds the scheduling timeline for one day: that day's allowed
// windows and existing bookings, the test's required duration, and the
// student's own confirmed/tentative slots as overlays.
func (v *View) Timeline(day int64) *schedule.Timeline {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timelineLocked(day)
}

func (v *View) timelineLocked(day int64) *schedule.Timeline {
	allowed := v.avail.Windows()[day]
	existing := v.bookings.Schedules()[day]

	var owned []schedule.OwnedScheduling
	if v.enrollment.Scheduled() {
		start := *v.enrollment.StartTestAt
		end := start.Add(time.Duration(v.enrollment.DurationMins) * time.Minute)
		for _, dw := range schedule.SplitByDay(start, end) {
			if dw.Day == day {
				owned = append(owned, schedule.OwnedScheduling{TimeWindow: dw.Window, Confirmed: true})
			}
		}
	}
	if v.desired != nil {
		end := v.desired.StartAt.Add(time.Duration(v.desired.Minutes) * time.Minute)
		for _, dw := range schedule.SplitByDay(v.desired.StartAt, end) {
			if dw.Day == day {
				owned = append(owned, schedule.OwnedScheduling{TimeWindow: dw.Window, Confirmed: false})
			}
		}
	}
	return schedule.NewTimeline(allowed, existing, owned, v.test.DurationMins)
}
