// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/avereth/testing-center/internal/model"
	"github.com/avereth/testing-center/internal/utils"
)

// Watched collections.  Record events are published for every write to
// these tables so open scheduling views can stay live without polling.
const (
	CollectionHours       = "testing_center_hours"
	CollectionEnrollments = "test_enrollments"
)

// Actions carried by a RecordEvent.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RecordEvent is broadcast after a write to a watched collection.  It
// carries the record's post-write state (empty for deletes) so consumers
// can update their views without querying the primary database.
type RecordEvent struct {
	Action     string        `json:"action"`
	Collection string        `json:"collection"`
	Record     RecordPayload `json:"record"`
}

// RecordPayload is the wire form of a watched record.  Timestamps use the
// store date format ("YYYY-MM-DD HH:MM:SS.sss", space-separated).  Only the
// fields of the event's collection are populated.
type RecordPayload struct {
	ID uint64 `json:"id"`

	// testing_center_hours
	Opens  string `json:"opens,omitempty"`
	Closes string `json:"closes,omitempty"`
	Seats  int    `json:"seats,omitempty"`

	// test_enrollments
	StartTestAt  string `json:"start_test_at,omitempty"`
	DurationMins int    `json:"duration_mins,omitempty"`
	UnlocksAt    string `json:"unlocks_at,omitempty"`
}

// HoursEvent builds a RecordEvent for a testing_center_hours write.
func HoursEvent(action string, h model.TestingCenterHours) RecordEvent {
	return RecordEvent{
		Action:     action,
		Collection: CollectionHours,
		Record: RecordPayload{
			ID:     h.ID,
			Opens:  utils.FormatStoreDate(h.Opens),
			Closes: utils.FormatStoreDate(h.Closes),
			Seats:  h.Seats,
		},
	}
}

// EnrollmentEvent builds a RecordEvent for a test_enrollments write.
func EnrollmentEvent(action string, e model.TestEnrollment) RecordEvent {
	p := RecordPayload{ID: e.ID, DurationMins: e.DurationMins}
	if e.StartTestAt != nil {
		p.StartTestAt = utils.FormatStoreDate(*e.StartTestAt)
	}
	if e.UnlocksAt != nil {
		p.UnlocksAt = utils.FormatStoreDate(*e.UnlocksAt)
	}
	return RecordEvent{Action: action, Collection: CollectionEnrollments, Record: p}
}

// DeleteEvent builds a RecordEvent announcing a deleted record.
func DeleteEvent(collection string, id uint64) RecordEvent {
	return RecordEvent{Action: ActionDelete, Collection: collection, Record: RecordPayload{ID: id}}
}

// HoursRecord decodes the payload's hours fields.  Returns ok=false when a
// timestamp fails to parse.
func (p RecordPayload) HoursRecord() (opens, closes time.Time, ok bool) {
	opens, err := utils.ParseStoreDate(p.Opens)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closes, err = utils.ParseStoreDate(p.Closes)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return opens, closes, true
}

// StartAt decodes the payload's start_test_at field.  Returns ok=false for
// unscheduled enrollments.
func (p RecordPayload) StartAt() (time.Time, bool) {
	if p.StartTestAt == "" {
		return time.Time{}, false
	}
	t, err := utils.ParseStoreDate(p.StartTestAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
