package model

import "time"

// TestEnrollment records one student's registration for a test, as stored
// in the `test_enrollments` table.  StartTestAt and DurationMins describe
// the committed slot; both are unset until the student books one.  An
// enrollment with a committed slot consumes one seat for its duration.
//
// Fields:
//  ID                – primary key identifier.
//  TestID            – test being taken.
//  CanvasStudentName – display name imported from the LMS roster.
//  CanvasStudentID   – student identifier in the LMS.
//  StartTestAt       – committed slot start (nullable).
//  DurationMins      – committed slot length in minutes.
//  UnlocksAt         – earliest instant this student may schedule,
//                      overriding the test's open bound when later
//                      (nullable).
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type TestEnrollment struct {
	ID                uint64     // test_enrollments.id
	TestID            uint64     // test_enrollments.test_id
	CanvasStudentName string     // test_enrollments.canvas_student_name
	CanvasStudentID   int64      // test_enrollments.canvas_student_id
	StartTestAt       *time.Time // test_enrollments.start_test_at (nullable)
	DurationMins      int        // test_enrollments.duration_mins
	UnlocksAt         *time.Time // test_enrollments.unlocks_at (nullable)
	CreatedAt         time.Time  // test_enrollments.created_at
	UpdatedAt         time.Time  // test_enrollments.updated_at
}

// Scheduled reports whether the enrollment has a committed slot.
func (e *TestEnrollment) Scheduled() bool {
	return e.StartTestAt != nil && e.DurationMins > 0
}
