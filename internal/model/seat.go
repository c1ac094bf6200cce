package model

// Seat describes one physical desk in the testing center floor plan.
// Position is in room-grid units and Angle is the facing direction in
// radians; both feed the visibility scoring used to assign desks.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – desk label (e.g. "A0").
//  X, Y     – position on the floor grid.
//  Angle    – facing direction in radians.
//  Occupied – whether a student is currently seated here.
type Seat struct {
	ID       uint64  // seats.id
	Name     string  // seats.name
	X        float64 // seats.x
	Y        float64 // seats.y
	Angle    float64 // seats.angle
	Occupied bool    // seats.occupied
}
