package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avereth/testing-center/internal/model"
	"github.com/avereth/testing-center/internal/queue"
	"github.com/avereth/testing-center/internal/repository"
	"github.com/avereth/testing-center/internal/seating"
	"github.com/avereth/testing-center/internal/utils"
)

type enrollmentReq struct {
	TestID            uint64 `json:"test_id"`
	CanvasStudentName string `json:"canvas_student_name"`
	CanvasStudentID   int64  `json:"canvas_student_id"`
	DurationMins      int    `json:"duration_mins"` // 0: inherit the test's duration
	UnlocksAt         string `json:"unlocks_at"`    // optional personal unlock
}

type enrollmentResp struct {
	ID                uint64 `json:"id"`
	TestID            uint64 `json:"test_id"`
	CanvasStudentName string `json:"canvas_student_name"`
	CanvasStudentID   int64  `json:"canvas_student_id"`
	StartTestAt       string `json:"start_test_at,omitempty"`
	DurationMins      int    `json:"duration_mins"`
	UnlocksAt         string `json:"unlocks_at,omitempty"`
}

func toEnrollmentResp(e model.TestEnrollment) enrollmentResp {
	resp := enrollmentResp{
		ID:                e.ID,
		TestID:            e.TestID,
		CanvasStudentName: e.CanvasStudentName,
		CanvasStudentID:   e.CanvasStudentID,
		DurationMins:      e.DurationMins,
	}
	if e.StartTestAt != nil {
		resp.StartTestAt = utils.FormatStoreDate(*e.StartTestAt)
	}
	if e.UnlocksAt != nil {
		resp.UnlocksAt = utils.FormatStoreDate(*e.UnlocksAt)
	}
	return resp
}

// CreateEnrollment handles POST /v1/admin/enrollments, registering one
// student from the LMS roster for a test.
func (h *AdminHandler) CreateEnrollment(c echo.Context) error {
	var req enrollmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.CanvasStudentName = strings.TrimSpace(req.CanvasStudentName)
	if req.TestID == 0 || req.CanvasStudentName == "" || req.CanvasStudentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "test_id, canvas_student_name and canvas_student_id are required"})
	}
	var unlocksAt *time.Time
	if strings.TrimSpace(req.UnlocksAt) != "" {
		t, ok := parseDateField(req.UnlocksAt)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unlocks_at must be a valid datetime"})
		}
		unlocksAt = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	test, err := h.Tests.GetByID(ctx, req.TestID)
	if err != nil {
		if errors.Is(err, repository.ErrTestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "test not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	durationMins := req.DurationMins
	if durationMins <= 0 {
		durationMins = test.DurationMins
	}

	e, err := h.Enrollments.Create(ctx, test.ID, req.CanvasStudentName, req.CanvasStudentID, durationMins, unlocksAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create enrollment failed"})
	}
	h.broadcast(ctx, queue.EnrollmentEvent(queue.ActionCreate, e))
	return c.JSON(http.StatusCreated, toEnrollmentResp(e))
}

// ListEnrollments handles GET /v1/admin/tests/:id/enrollments.
func (h *AdminHandler) ListEnrollments(c echo.Context) error {
	testID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	enrollments, err := h.Enrollments.ListByTest(ctx, testID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]enrollmentResp, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, toEnrollmentResp(e))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateEnrollmentUnlocks handles PATCH /v1/admin/enrollments/:id/unlocks.
// An empty unlocks_at clears the personal unlock so the test's open bound
// applies again.
func (h *AdminHandler) UpdateEnrollmentUnlocks(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		UnlocksAt string `json:"unlocks_at"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var unlocksAt *time.Time
	if strings.TrimSpace(req.UnlocksAt) != "" {
		t, okT := parseDateField(req.UnlocksAt)
		if !okT {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unlocks_at must be a valid datetime"})
		}
		unlocksAt = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Enrollments.UpdateUnlocks(ctx, id, unlocksAt)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update enrollment failed"})
	}
	h.broadcast(ctx, queue.EnrollmentEvent(queue.ActionUpdate, e))
	return c.JSON(http.StatusOK, toEnrollmentResp(e))
}

// DeleteEnrollment handles DELETE /v1/admin/enrollments/:id.  The delete
// is broadcast so open views release the slot's seat immediately.
func (h *AdminHandler) DeleteEnrollment(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Enrollments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete enrollment failed"})
	}
	h.broadcast(ctx, queue.DeleteEvent(queue.CollectionEnrollments, id))
	return c.NoContent(http.StatusNoContent)
}

// ListSeats handles GET /v1/admin/seats, returning the physical seat map.
func (h *AdminHandler) ListSeats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, seats)
}

// CreateSeat handles POST /v1/admin/seats, adding a desk to the floor
// plan.  X/Y are the desk's position, angle its facing direction in
// degrees.
func (h *AdminHandler) CreateSeat(c echo.Context) error {
	var req struct {
		Name  string  `json:"name"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Angle float64 `json:"angle"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seat, err := h.Seats.Create(ctx, model.Seat{Name: req.Name, X: req.X, Y: req.Y, Angle: req.Angle})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create seat failed"})
	}
	return c.JSON(http.StatusCreated, seat)
}

// AssignSeat handles POST /v1/admin/seats/assign.  It picks the free seat
// least visible to the already-occupied ones (proctors fill the room from
// the most hidden desks outward) and marks it occupied.
func (h *AdminHandler) AssignSeat(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	idx := seating.LeastVisibleSeat(seats)
	if idx < 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no free seats"})
	}
	if err := h.Seats.SetOccupied(ctx, seats[idx].ID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign seat failed"})
	}
	seats[idx].Occupied = true
	return c.JSON(http.StatusOK, seats[idx])
}

// ReleaseSeat handles POST /v1/admin/seats/:id/release.
func (h *AdminHandler) ReleaseSeat(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Seats.SetOccupied(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release seat failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
