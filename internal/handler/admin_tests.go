package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avereth/testing-center/internal/model"
	"github.com/avereth/testing-center/internal/repository"
	"github.com/avereth/testing-center/internal/utils"
)

type testReq struct {
	Name         string `json:"name"`
	DurationMins int    `json:"duration_mins"`
	Opens        string `json:"opens"`  // optional; empty until published
	Closes       string `json:"closes"` // optional; empty until published
}

type testResp struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	DurationMins int    `json:"duration_mins"`
	Opens        string `json:"opens,omitempty"`
	Closes       string `json:"closes,omitempty"`
}

func toTestResp(t model.Test) testResp {
	resp := testResp{ID: t.ID, Name: t.Name, DurationMins: t.DurationMins}
	if t.Opens != nil {
		resp.Opens = utils.FormatStoreDate(*t.Opens)
	}
	if t.Closes != nil {
		resp.Closes = utils.FormatStoreDate(*t.Closes)
	}
	return resp
}

// parseTestReq validates a test create/update body.  Opens/Closes may
// both be empty (test not yet published) but never just one of them.
func parseTestReq(c echo.Context) (name string, durationMins int, opens, closes *time.Time, err error) {
	var req testReq
	if bindErr := c.Bind(&req); bindErr != nil {
		return "", 0, nil, nil, errors.New("invalid body")
	}
	name = strings.TrimSpace(req.Name)
	if name == "" {
		return "", 0, nil, nil, errors.New("name is required")
	}
	if req.DurationMins < 1 {
		return "", 0, nil, nil, errors.New("duration_mins must be at least 1")
	}
	hasOpens := strings.TrimSpace(req.Opens) != ""
	hasCloses := strings.TrimSpace(req.Closes) != ""
	if hasOpens != hasCloses {
		return "", 0, nil, nil, errors.New("opens and closes must be set together")
	}
	if hasOpens {
		o, okO := parseDateField(req.Opens)
		cl, okC := parseDateField(req.Closes)
		if !okO || !okC {
			return "", 0, nil, nil, errors.New("opens/closes must be valid datetimes")
		}
		if !cl.After(o) {
			return "", 0, nil, nil, errors.New("closes must be after opens")
		}
		opens, closes = &o, &cl
	}
	return name, req.DurationMins, opens, closes, nil
}

// CreateTest handles POST /v1/admin/tests.
func (h *AdminHandler) CreateTest(c echo.Context) error {
	name, durationMins, opens, closes, err := parseTestReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tests.Create(ctx, name, durationMins, opens, closes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create test failed"})
	}
	return c.JSON(http.StatusCreated, toTestResp(t))
}

// ListTests handles GET /v1/admin/tests.
func (h *AdminHandler) ListTests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tests, err := h.Tests.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]testResp, 0, len(tests))
	for _, t := range tests {
		out = append(out, toTestResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

// GetTest handles GET /v1/admin/tests/:id.
func (h *AdminHandler) GetTest(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "test not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTestResp(t))
}

// UpdateTest handles PUT /v1/admin/tests/:id.  Moving the open/close
// bounds invalidates open scheduling views; they rebuild on next access.
func (h *AdminHandler) UpdateTest(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	name, durationMins, opens, closes, err := parseTestReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tests.Update(ctx, id, name, durationMins, opens, closes)
	if err != nil {
		if errors.Is(err, repository.ErrTestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "test not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update test failed"})
	}
	return c.JSON(http.StatusOK, toTestResp(t))
}

// DeleteTest handles DELETE /v1/admin/tests/:id.  Tests that still have
// enrollments cannot be deleted.
func (h *AdminHandler) DeleteTest(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tests.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrTestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "test not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "test has enrollments"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete test failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
