package model

import "time"

// Test represents an exam administered through the testing center, as
// stored in the `tests` table.  Enrollments reference a test and inherit
// its default duration and open/close bounds.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – human-readable exam name.
//  DurationMins – default booking length for enrollments in this test.
//  Opens        – earliest instant a slot may be scheduled.
//  Closes       – latest instant a slot may end.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Test struct {
	ID           uint64     // tests.id
	Name         string     // tests.name
	DurationMins int        // tests.duration_mins
	Opens        *time.Time // tests.opens (nullable until published)
	Closes       *time.Time // tests.closes (nullable until published)
	CreatedAt    time.Time  // tests.created_at
	UpdatedAt    time.Time  // tests.updated_at
}
