// Package schedule contains the availability/overlap scheduling engine for
// the testing center.  It is a pure in-memory layer: it aggregates absolute
// open-hours and enrollment records into per-day minute windows, renders a
// utilization heatmap over a fixed time grid and validates candidate slots
// against seat capacity.  Nothing in this package touches the database or
// the message broker; repositories and services feed it and act on its
// output.
package schedule

// MinutesPerDay is the number of minutes in one calendar day.  Windows
// produced by the aggregators always lie within [0, MinutesPerDay].
const MinutesPerDay = 24 * 60

// TimeWindow is a half-open interval [Start, End) expressed in minutes from
// local midnight of one calendar day.  Well-formed windows satisfy
// 0 <= Start < End; constructing a window with Start >= End is a caller bug.
type TimeWindow struct {
	Start int `json:"start"` // minutes from midnight, inclusive
	End   int `json:"end"`   // minutes from midnight, exclusive
}

// Minutes returns the length of the window.
func (w TimeWindow) Minutes() int { return w.End - w.Start }

// Overlaps reports whether two half-open windows share any instant.
// Touching endpoints (a.End == b.Start) do not overlap.
func Overlaps(a, b TimeWindow) bool {
	return a.Start < b.End && b.Start < a.End
}

// Contains reports whether the probe interval [point, point+probeMins] lies
// entirely inside the window.
func Contains(w TimeWindow, point, probeMins int) bool {
	return point >= w.Start && point+probeMins <= w.End
}

// AvailabilityWindow is one contiguous period within a single day during
// which the testing center is open, together with how many seats it can
// host simultaneously.  Produced only by splitting an absolute open/close
// range at day boundaries, so every window lies within [0, MinutesPerDay].
type AvailabilityWindow struct {
	TimeWindow
	Seats int `json:"seats"`
}

// ExistingScheduling is the footprint of an already-committed reservation
// within one day.  Weight is the capacity the booking consumes for the
// duration of the interval; a plain enrollment consumes one seat.  A booking
// that crosses midnight is represented by multiple entries whose union
// reconstructs the original absolute interval.
type ExistingScheduling struct {
	TimeWindow
	Weight float64 `json:"weight"`
}

// OwnedScheduling is the current student's own slot as rendered on the
// timeline: either the committed slot (Confirmed) or an in-progress
// tentative selection.  The two may overlap while the student is deciding.
type OwnedScheduling struct {
	TimeWindow
	Confirmed bool `json:"confirmed"`
}
