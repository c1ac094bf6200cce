package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/avereth/testing-center/internal/repository"
)

func newAdminEnv() (*AdminHandler, *echo.Echo) {
	// Validation failures never reach the database, so repositories built
	// on a nil connection are enough here.
	h := NewAdminHandler(
		repository.NewHoursRepo(nil),
		repository.NewTestRepo(nil),
		repository.NewEnrollmentRepo(nil),
		repository.NewSeatRepo(nil),
		nil,
	)
	return h, echo.New()
}

func TestCreateHoursRejectsMissingDates(t *testing.T) {
	h, e := newAdminEnv()

	rec := doJSON(e, h.CreateHours, http.MethodPost, `{"seats":2}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHoursRejectsInvertedRange(t *testing.T) {
	h, e := newAdminEnv()

	body := `{"opens":"2026-04-06 18:00:00.000Z","closes":"2026-04-06 08:00:00.000Z","seats":2}`
	rec := doJSON(e, h.CreateHours, http.MethodPost, body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHoursRejectsZeroSeats(t *testing.T) {
	h, e := newAdminEnv()

	body := `{"opens":"2026-04-06 08:00:00.000Z","closes":"2026-04-06 18:00:00.000Z","seats":0}`
	rec := doJSON(e, h.CreateHours, http.MethodPost, body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEnrollmentRequiresRosterFields(t *testing.T) {
	h, e := newAdminEnv()

	rec := doJSON(e, h.CreateEnrollment, http.MethodPost, `{"test_id":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSeatRequiresName(t *testing.T) {
	h, e := newAdminEnv()

	rec := doJSON(e, h.CreateSeat, http.MethodPost, `{"x":1,"y":2,"angle":90}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateHoursRejectsBadID(t *testing.T) {
	h, e := newAdminEnv()

	body := `{"opens":"2026-04-06 08:00:00.000Z","closes":"2026-04-06 18:00:00.000Z","seats":2}`
	rec := doJSON(e, h.UpdateHours, http.MethodPut, body, map[string]string{"id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
