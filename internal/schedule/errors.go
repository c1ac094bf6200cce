// Error values surfaced by the timeline engine when a clicked slot cannot
// be taken.  All are recoverable from the student's point of view: the
// handler reports them and no state changes.
package schedule

import "errors"

// ErrOutOfWindow is returned when the chosen start time is not inside any
// availability window.
var ErrOutOfWindow = errors.New("time slot not within allowed windows")

// ErrCapacityExceeded is returned when booking at the chosen start time
// would push concurrent usage past seat capacity at some instant of the
// requested duration.
var ErrCapacityExceeded = errors.New("would exceed maximum overlap")

// ErrZeroDuration signals an achievable duration of zero despite the start
// cell passing the window and capacity checks.  It should be unreachable
// and is treated as an invariant violation rather than a user error.
var ErrZeroDuration = errors.New("achievable duration is zero")
