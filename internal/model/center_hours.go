package model

import "time"

// TestingCenterHours represents one open-hours block of the testing
// center, as stored in the `testing_center_hours` table.  A block may span
// multiple calendar days; the scheduling layer splits it at day boundaries
// before use.
//
// Fields:
//  ID        – primary key identifier.
//  Opens     – absolute instant the center opens.
//  Closes    – absolute instant the center closes.
//  Seats     – maximum simultaneous reservation weight during this block.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type TestingCenterHours struct {
	ID        uint64    // testing_center_hours.id
	Opens     time.Time // testing_center_hours.opens
	Closes    time.Time // testing_center_hours.closes
	Seats     int       // testing_center_hours.seats
	CreatedAt time.Time // testing_center_hours.created_at
	UpdatedAt time.Time // testing_center_hours.updated_at
}
