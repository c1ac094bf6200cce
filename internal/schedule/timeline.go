package schedule

// Default grid: 07:00 to 20:00 in 10-minute cells.
const (
	DefaultTimelineStartMins = 7 * 60
	DefaultTimelineEndMins   = 20 * 60
	DefaultCellDurationMins  = 10
)

// Timeline computes the bookable-slot grid for one calendar day.  It is
// re-derived from its inputs on every use and holds no state besides the
// ephemeral hover position; it never mutates the availability or booking
// data it reads.
type Timeline struct {
	AllowedWindows    []AvailabilityWindow
	ExistingSchedules []ExistingScheduling
	Owned             []OwnedScheduling

	// Duration is the requested length of the new booking in minutes.
	Duration int

	StartMins int
	EndMins   int
	CellMins  int
	ColorFunc HeatmapColorFunc

	// hover tracks the last hovered cell for the preview overlay.
	// Negative means no hover.
	hover int
}

// NewTimeline builds a timeline for one day with the default grid.  Callers
// may adjust the grid fields before use.
func NewTimeline(allowed []AvailabilityWindow, existing []ExistingScheduling, owned []OwnedScheduling, durationMins int) *Timeline {
	return &Timeline{
		AllowedWindows:    allowed,
		ExistingSchedules: existing,
		Owned:             owned,
		Duration:          durationMins,
		StartMins:         DefaultTimelineStartMins,
		EndMins:           DefaultTimelineEndMins,
		CellMins:          DefaultCellDurationMins,
		ColorFunc:         DefaultHeatmapColor,
		hover:             -1,
	}
}

// Slots returns every candidate start time on the grid.
func (t *Timeline) Slots() []int {
	n := (t.EndMins - t.StartMins) / t.CellMins
	slots := make([]int, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, t.StartMins+i*t.CellMins)
	}
	return slots
}

// IsTimeAllowed reports whether some availability window fully contains the
// cell [time, time+CellMins].
func (t *Timeline) IsTimeAllowed(time int) bool {
	for _, w := range t.AllowedWindows {
		if Contains(w.TimeWindow, time, t.CellMins) {
			return true
		}
	}
	return false
}

// OverlapCount sums the weight of every existing booking that overlaps the
// cell [time, time+CellMins].
func (t *Timeline) OverlapCount(time int) float64 {
	cell := TimeWindow{Start: time, End: time + t.CellMins}
	var sum float64
	for _, s := range t.ExistingSchedules {
		if Overlaps(cell, s.TimeWindow) {
			sum += s.Weight
		}
	}
	return sum
}

// MaxOverlap sums the seats of every availability window containing the
// cell.  Windows are expected not to double-count the same physical
// capacity; overlapping source windows are summed as-is.
func (t *Timeline) MaxOverlap(time int) int {
	var sum int
	for _, w := range t.AllowedWindows {
		if Contains(w.TimeWindow, time, t.CellMins) {
			sum += w.Seats
		}
	}
	return sum
}

// WouldExceedMaxOverlap reports whether starting a booking of the requested
// duration at startTime would hit full capacity at any allowed cell within
// the duration.  Cells outside every window are skipped here; the click
// protocol handles them via the achievable-duration rule.
func (t *Timeline) WouldExceedMaxOverlap(startTime int) bool {
	for time := startTime; time < startTime+t.Duration; time += t.CellMins {
		if !t.IsTimeAllowed(time) {
			continue
		}
		if t.OverlapCount(time) >= float64(t.MaxOverlap(time)) {
			return true
		}
	}
	return false
}

// Hover records the hovered cell for the preview overlay; ClearHover
// removes it.  Hover state affects rendering only, never slot selection.
func (t *Timeline) Hover(time int) { t.hover = time }

// ClearHover resets the hover preview.
func (t *Timeline) ClearHover() { t.hover = -1 }

// previewWindow returns the hover preview interval, or false when there is
// no valid hover.
func (t *Timeline) previewWindow() (TimeWindow, bool) {
	if t.hover < 0 || !t.IsTimeAllowed(t.hover) {
		return TimeWindow{}, false
	}
	return TimeWindow{Start: t.hover, End: t.hover + t.Duration}, true
}

// Slot is a chosen candidate reported to the caller: a start offset within
// the day and the achieved duration.
type Slot struct {
	StartMins    int `json:"start_mins"`
	DurationMins int `json:"duration_mins"`
}

// Select implements the click protocol for the cell at time.  It validates
// the start against the availability windows and capacity, then greedily
// extends the duration in cell steps while cells remain allowed, capped at
// the requested duration.  The achieved duration may be shorter than
// requested when the window ends early; that is a successful selection, not
// an error.  Select never mutates backing data.
func (t *Timeline) Select(time int) (Slot, error) {
	if !t.IsTimeAllowed(time) {
		return Slot{}, ErrOutOfWindow
	}
	if t.WouldExceedMaxOverlap(time) {
		return Slot{}, ErrCapacityExceeded
	}
	achieved := 0
	for achieved < t.Duration && t.IsTimeAllowed(time+achieved) {
		achieved += t.CellMins
	}
	if achieved == 0 {
		// Unreachable when the checks above passed for the first cell.
		return Slot{}, ErrZeroDuration
	}
	return Slot{StartMins: time, DurationMins: achieved}, nil
}

// Cell is the render state of one grid point.
type Cell struct {
	TimeMins    int     `json:"time_mins"`
	Allowed     bool    `json:"allowed"`
	Overlaps    float64 `json:"overlaps"`
	MaxOverlap  int     `json:"max_overlap"`
	WouldExceed bool    `json:"would_exceed"`
	Color       string  `json:"color"`
	Owned       bool    `json:"owned,omitempty"`
	Confirmed   bool    `json:"confirmed,omitempty"`
}

// Cells renders the full grid: per cell the allowed/capacity flags, the
// heatmap color and whether the student's own confirmed or tentative slot
// covers it.  Color precedence is gray (blocked), light red (would exceed
// capacity), blue (hover preview), then the heatmap ramp.
func (t *Timeline) Cells() []Cell {
	preview, hasPreview := t.previewWindow()
	slots := t.Slots()
	cells := make([]Cell, 0, len(slots))
	for _, time := range slots {
		c := Cell{
			TimeMins:   time,
			Allowed:    t.IsTimeAllowed(time),
			Overlaps:   t.OverlapCount(time),
			MaxOverlap: t.MaxOverlap(time),
		}
		c.WouldExceed = c.Allowed && t.WouldExceedMaxOverlap(time)
		switch {
		case !c.Allowed:
			c.Color = colorBlocked
		case c.WouldExceed:
			c.Color = colorOverCapacity
		case hasPreview && time >= preview.Start && time < preview.End:
			c.Color = colorPreview
		default:
			c.Color = t.ColorFunc(c.Overlaps, HeatRefMin, HeatRefMax)
		}
		for _, own := range t.Owned {
			if Overlaps(TimeWindow{Start: time, End: time + t.CellMins}, own.TimeWindow) {
				c.Owned = true
				c.Confirmed = c.Confirmed || own.Confirmed
			}
		}
		cells = append(cells, c)
	}
	return cells
}
