package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avereth/testing-center/internal/model"
	"github.com/avereth/testing-center/internal/negotiation"
)

type fakeScheduleStore struct {
	enrollment model.TestEnrollment
	test       model.Test
	hours      []model.TestingCenterHours
	others     []model.TestEnrollment
}

func (f *fakeScheduleStore) GetWithTest(_ context.Context, _ uint64) (model.TestEnrollment, model.Test, error) {
	return f.enrollment, f.test, nil
}

func (f *fakeScheduleStore) ListStartingBetween(_ context.Context, _, _ time.Time) ([]model.TestEnrollment, error) {
	return f.others, nil
}

func (f *fakeScheduleStore) UpdateSlot(_ context.Context, _ uint64, startAt time.Time, durationMins int) (model.TestEnrollment, error) {
	e := f.enrollment
	e.StartTestAt = &startAt
	e.DurationMins = durationMins
	f.enrollment = e
	return e, nil
}

func (f *fakeScheduleStore) ListOverlapping(_ context.Context, _, _ time.Time) ([]model.TestingCenterHours, error) {
	return f.hours, nil
}

func newScheduleEnv(t *testing.T) (*ScheduleHandler, *echo.Echo) {
	t.Helper()
	day := time.Date(2026, 4, 6, 0, 0, 0, 0, time.Local)
	opens := day.Add(8 * time.Hour)
	closes := day.Add(18 * time.Hour)
	store := &fakeScheduleStore{
		enrollment: model.TestEnrollment{ID: 1, TestID: 5},
		test:       model.Test{ID: 5, DurationMins: 60, Opens: &opens, Closes: &closes},
		hours:      []model.TestingCenterHours{{ID: 9, Opens: opens, Closes: closes, Seats: 1}},
	}
	return NewScheduleHandler(negotiation.New(store, store, nil)), echo.New()
}

func doJSON(e *echo.Echo, h echo.HandlerFunc, method, body string, params map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	_ = h(c)
	return rec
}

func TestScheduleOverviewListsDays(t *testing.T) {
	h, e := newScheduleEnv(t)

	rec := doJSON(e, h.Overview, http.MethodGet, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Days []int64 `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Days, 1)
}

func TestScheduleDayRendersCells(t *testing.T) {
	h, e := newScheduleEnv(t)

	rec := doJSON(e, h.Overview, http.MethodGet, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var overview struct {
		Days []int64 `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	require.Len(t, overview.Days, 1)

	day := fmt.Sprintf("%d", overview.Days[0])
	rec = doJSON(e, h.Day, http.MethodGet, "", map[string]string{"id": "1", "day": day})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CellMins int `json:"cell_mins"`
		Cells    []struct {
			TimeMins int    `json:"time_mins"`
			Allowed  bool   `json:"allowed"`
			Color    string `json:"color"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.CellMins)
	assert.NotEmpty(t, resp.Cells)
}

func TestScheduleProposeAndConfirm(t *testing.T) {
	h, e := newScheduleEnv(t)

	rec := doJSON(e, h.Overview, http.MethodGet, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var overview struct {
		Days []int64 `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))

	body := fmt.Sprintf(`{"day":%d,"start_mins":540}`, overview.Days[0])
	rec = doJSON(e, h.Propose, http.MethodPost, body, map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, h.Confirm, http.MethodPost, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp enrollmentResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.StartTestAt)
	assert.Equal(t, 60, resp.DurationMins)
}

func TestScheduleProposeOutsideHoursConflicts(t *testing.T) {
	h, e := newScheduleEnv(t)

	rec := doJSON(e, h.Overview, http.MethodGet, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var overview struct {
		Days []int64 `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))

	// 07:00 is before the center opens.
	body := fmt.Sprintf(`{"day":%d,"start_mins":420}`, overview.Days[0])
	rec = doJSON(e, h.Propose, http.MethodPost, body, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScheduleConfirmWithoutProposalConflicts(t *testing.T) {
	h, e := newScheduleEnv(t)

	rec := doJSON(e, h.Confirm, http.MethodPost, "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
