package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avereth/testing-center/internal/negotiation"
	"github.com/avereth/testing-center/internal/repository"
	"github.com/avereth/testing-center/internal/schedule"
	"github.com/avereth/testing-center/internal/utils"
)

// ScheduleHandler exposes the slot negotiation flow to students: browse
// the bookable days, render a day's timeline, propose a start, shrink the
// duration and finally commit.  All state between propose and confirm
// lives in the negotiator's live view, fed by broker record events.
type ScheduleHandler struct {
	Neg *negotiation.Negotiator
}

func NewScheduleHandler(neg *negotiation.Negotiator) *ScheduleHandler {
	if neg == nil {
		panic("nil negotiator passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Neg: neg}
}

type desiredResp struct {
	StartAt    string `json:"start_at"`
	Minutes    int    `json:"minutes"`
	MaxMinutes int    `json:"max_minutes"`
}

func toDesiredResp(d *negotiation.DesiredSlot) *desiredResp {
	if d == nil {
		return nil
	}
	return &desiredResp{
		StartAt:    utils.FormatStoreDate(d.StartAt),
		Minutes:    d.Minutes,
		MaxMinutes: d.MaxMinutes,
	}
}

// view resolves the live view for the :id enrollment, translating the
// negotiator's errors to HTTP responses.  A nil view means the response
// has already been written.
func (h *ScheduleHandler) view(c echo.Context) (*negotiation.View, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Neg.View(ctx, id)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, negotiation.ErrNotReady):
		return nil, c.JSON(http.StatusConflict, echo.Map{"error": "test has no scheduling window yet"})
	case errors.Is(err, repository.ErrEnrollmentNotFound), errors.Is(err, repository.ErrTestNotFound):
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
	default:
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load schedule failed"})
	}
}

// Overview handles GET /v1/enrollments/:id/schedule.  It returns the
// bookable range, the day anchors that have any availability, the current
// committed slot and the in-progress proposal.
func (h *ScheduleHandler) Overview(c echo.Context) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	open, close := v.Range()
	resp := echo.Map{
		"opens":   utils.FormatStoreDate(open),
		"closes":  utils.FormatStoreDate(close),
		"days":    v.Days(),
		"desired": toDesiredResp(v.Desired()),
	}
	enr, _ := v.Current()
	if enr.Scheduled() {
		resp["start_test_at"] = utils.FormatStoreDate(*enr.StartTestAt)
		resp["duration_mins"] = enr.DurationMins
	}
	return c.JSON(http.StatusOK, resp)
}

// Day handles GET /v1/enrollments/:id/schedule/days/:day.  The :day path
// parameter is the day anchor (local midnight, Unix milliseconds) as
// returned by Overview.  An optional ?hover=<minutes> renders the blue
// placement preview at that start offset.
func (h *ScheduleHandler) Day(c echo.Context) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	day, err := strconv.ParseInt(c.Param("day"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid day"})
	}

	tl := v.Timeline(day)
	if hover := c.QueryParam("hover"); hover != "" {
		mins, convErr := strconv.Atoi(hover)
		if convErr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hover"})
		}
		tl.Hover(mins)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"day":        day,
		"cell_mins":  tl.CellMins,
		"start_mins": tl.StartMins,
		"end_mins":   tl.EndMins,
		"cells":      tl.Cells(),
	})
}

// Propose handles POST /v1/enrollments/:id/schedule/propose with a JSON
// body {"day": <anchor>, "start_mins": <offset>}.  On success the achieved
// slot (possibly shorter than the test's duration when the window ends
// early) is stored as the view's proposal and returned.
func (h *ScheduleHandler) Propose(c echo.Context) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	var req struct {
		Day       int64 `json:"day"`
		StartMins int   `json:"start_mins"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	slot, err := h.Neg.Propose(v, req.Day, req.StartMins)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"slot": slot, "desired": toDesiredResp(v.Desired())})
	case errors.Is(err, schedule.ErrOutOfWindow):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot not within allowed windows"})
	case errors.Is(err, schedule.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no seats left at that time"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "propose failed"})
	}
}

// Duration handles PATCH /v1/enrollments/:id/schedule/duration with a JSON
// body {"minutes": <n>}.  Minutes clamp to the proposal's achievable cap;
// shrinking is allowed, growing past the cap is not.
func (h *ScheduleHandler) Duration(c echo.Context) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Neg.SetDesiredMinutes(v, req.Minutes); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no proposed slot"})
	}
	return c.JSON(http.StatusOK, echo.Map{"desired": toDesiredResp(v.Desired())})
}

// Confirm handles POST /v1/enrollments/:id/schedule/confirm, committing
// the proposal as the enrollment's slot.  A failed commit keeps the
// proposal so the student can retry.
func (h *ScheduleHandler) Confirm(c echo.Context) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Neg.Confirm(ctx, v)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toEnrollmentResp(updated))
	case errors.Is(err, negotiation.ErrNothingProposed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no proposed slot to confirm"})
	default:
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "commit failed, selection kept"})
	}
}
