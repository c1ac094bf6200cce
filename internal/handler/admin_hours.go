package handler

import (
	"context"  // context with cancellation for DB calls
	"errors"   // errors.Is comparisons against repository sentinels
	"log"      // broadcast failures are logged, not returned
	"net/http" // HTTP status codes
	"strings"  // trimming request fields
	"time"     // timeouts and timestamp parsing

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/avereth/testing-center/internal/model"      // domain records
	"github.com/avereth/testing-center/internal/queue"      // record change events
	"github.com/avereth/testing-center/internal/repository" // DB repositories
	"github.com/avereth/testing-center/internal/utils"      // datetime codec
)

// AdminHandler bundles the repositories admins use to manage the testing
// center: operating hours, tests, enrollments and the seat map.  Publish
// broadcasts a record change after every successful write so that open
// scheduling views converge without polling; it may be nil when no broker
// is configured.
type AdminHandler struct {
	Hours       *repository.HoursRepo
	Tests       *repository.TestRepo
	Enrollments *repository.EnrollmentRepo
	Seats       *repository.SeatRepo
	Publish     func(ctx context.Context, ev queue.RecordEvent) error
}

// NewAdminHandler constructs an AdminHandler and panics if a repository is missing.
func NewAdminHandler(hours *repository.HoursRepo, tests *repository.TestRepo, enrollments *repository.EnrollmentRepo, seats *repository.SeatRepo, publish func(ctx context.Context, ev queue.RecordEvent) error) *AdminHandler {
	if hours == nil || tests == nil || enrollments == nil || seats == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Hours: hours, Tests: tests, Enrollments: enrollments, Seats: seats, Publish: publish}
}

// broadcast publishes a record event, logging rather than failing the
// request when the broker is down; the write already committed.
func (h *AdminHandler) broadcast(ctx context.Context, ev queue.RecordEvent) {
	if h.Publish == nil {
		return
	}
	if err := h.Publish(ctx, ev); err != nil {
		log.Printf("broadcast %s %s/%d failed: %v", ev.Action, ev.Collection, ev.Record.ID, err)
	}
}

// parseDateField accepts either the store datetime format
// ("2006-01-02 15:04:05.000Z") or RFC3339.
func parseDateField(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := utils.ParseStoreDate(s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type hoursReq struct {
	Opens  string `json:"opens"`
	Closes string `json:"closes"`
	Seats  int    `json:"seats"`
}

type hoursResp struct {
	ID     uint64 `json:"id"`
	Opens  string `json:"opens"`
	Closes string `json:"closes"`
	Seats  int    `json:"seats"`
}

func toHoursResp(h model.TestingCenterHours) hoursResp {
	return hoursResp{
		ID:     h.ID,
		Opens:  utils.FormatStoreDate(h.Opens),
		Closes: utils.FormatStoreDate(h.Closes),
		Seats:  h.Seats,
	}
}

// parseHoursReq binds and validates an hours create/update body.
func parseHoursReq(c echo.Context) (opens, closes time.Time, seats int, err error) {
	var req hoursReq
	if bindErr := c.Bind(&req); bindErr != nil {
		return time.Time{}, time.Time{}, 0, errors.New("invalid body")
	}
	opens, okO := parseDateField(req.Opens)
	closes, okC := parseDateField(req.Closes)
	if !okO || !okC {
		return time.Time{}, time.Time{}, 0, errors.New("opens and closes are required datetimes")
	}
	if !closes.After(opens) {
		return time.Time{}, time.Time{}, 0, errors.New("closes must be after opens")
	}
	if req.Seats < 1 {
		return time.Time{}, time.Time{}, 0, errors.New("seats must be at least 1")
	}
	return opens, closes, req.Seats, nil
}

// CreateHours handles POST /v1/admin/hours.  An hours record is one
// contiguous open stretch of the center with a seat capacity; stretches
// crossing midnight are split per day by the scheduling engine, not here.
func (h *AdminHandler) CreateHours(c echo.Context) error {
	opens, closes, seats, err := parseHoursReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Hours.Create(ctx, opens, closes, seats)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hours failed"})
	}
	h.broadcast(ctx, queue.HoursEvent(queue.ActionCreate, rec))
	return c.JSON(http.StatusCreated, toHoursResp(rec))
}

// ListHours handles GET /v1/admin/hours?from=...&to=... returning every
// open stretch overlapping the requested range (default: the next 30 days).
func (h *AdminHandler) ListHours(c echo.Context) error {
	from, okF := parseDateField(c.QueryParam("from"))
	to, okT := parseDateField(c.QueryParam("to"))
	if !okF || !okT {
		from = time.Now()
		to = from.AddDate(0, 0, 30)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	recs, err := h.Hours.ListOverlapping(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]hoursResp, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toHoursResp(rec))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateHours handles PUT /v1/admin/hours/:id.
func (h *AdminHandler) UpdateHours(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	opens, closes, seats, err := parseHoursReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Hours.Update(ctx, id, opens, closes, seats)
	if err != nil {
		if errors.Is(err, repository.ErrHoursNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hours not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update hours failed"})
	}
	h.broadcast(ctx, queue.HoursEvent(queue.ActionUpdate, rec))
	return c.JSON(http.StatusOK, toHoursResp(rec))
}

// DeleteHours handles DELETE /v1/admin/hours/:id.
func (h *AdminHandler) DeleteHours(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hours.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHoursNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hours not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete hours failed"})
	}
	h.broadcast(ctx, queue.DeleteEvent(queue.CollectionHours, id))
	return c.NoContent(http.StatusNoContent)
}
