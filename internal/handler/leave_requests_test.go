package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/domain"
)

func newTestHandler(t *testing.T, restDays string) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "secreto-de-pruebas"
	cfg.Leave.RestDays = restDays
	cfg.Leave.MaxRangeDays = 366

	h, err := NewHandler(cfg, nil, nil, nil, nil)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func sessionCookie(t *testing.T, h *Handler, role domain.Role) *http.Cookie {
	t.Helper()

	ss, err := h.signToken(&domain.User{ID: 10, Role: role}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return &http.Cookie{Name: tokenCookieName, Value: ss}
}

type previewResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    leaveBreakdown `json:"data"`
}

func postPreview(t *testing.T, h *Handler, cookie *http.Cookie, body string) previewResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/leave-requests/preview", strings.NewReader(body))
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPreviewLeaveRequest(t *testing.T) {
	h := newTestHandler(t, "")
	cookie := sessionCookie(t, h, domain.RoleEmployee)

	resp := postPreview(t, h, cookie, `{"startDate":"2025-10-13","endDate":"2025-10-29"}`)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 15, resp.Data.BusinessDays)
	assert.Equal(t, 17, resp.Data.CalendarDays)
	assert.Len(t, resp.Data.Included, 15)
	assert.Equal(t, []calendar.CalendarDate{
		calendar.MustParseDate("2025-10-19"),
		calendar.MustParseDate("2025-10-26"),
	}, resp.Data.Excluded)

	resp = postPreview(t, h, cookie, `{"startDate":"2025-10-19","endDate":"2025-10-19"}`)
	require.True(t, resp.Success)
	assert.Zero(t, resp.Data.BusinessDays)
	assert.Equal(t, 1, resp.Data.CalendarDays)
}

func TestPreviewUsesConfiguredPolicy(t *testing.T) {
	h := newTestHandler(t, "weekend")
	cookie := sessionCookie(t, h, domain.RoleEmployee)

	resp := postPreview(t, h, cookie, `{"startDate":"2025-10-13","endDate":"2025-10-29"}`)
	require.True(t, resp.Success)
	assert.Equal(t, 13, resp.Data.BusinessDays)
}

func TestPreviewRejectsBadInput(t *testing.T) {
	h := newTestHandler(t, "sunday")
	cookie := sessionCookie(t, h, domain.RoleEmployee)

	resp := postPreview(t, h, cookie, `{"startDate":"2025-10-29","endDate":"2025-10-13"}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "posterior")

	resp = postPreview(t, h, cookie, `{"startDate":"2025-13-01","endDate":"2025-13-05"}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, `"2025-13-01"`)

	resp = postPreview(t, h, cookie, `{"startDate":"2025-10-13"}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "requerido")
}

func TestPreviewRequiresSession(t *testing.T) {
	h := newTestHandler(t, "sunday")

	resp := postPreview(t, h, nil, `{"startDate":"2025-10-13","endDate":"2025-10-29"}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "Sesión no iniciada", resp.Message)

	resp = postPreview(t, h, &http.Cookie{Name: tokenCookieName, Value: "basura"}, `{}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "Token inválido", resp.Message)
}

func TestAdministratorOnlyRoutes(t *testing.T) {
	h := newTestHandler(t, "sunday")

	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(`{}`))
	req.AddCookie(sessionCookie(t, h, domain.RoleEmployee))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Permisos insuficientes", resp.Message)
}

func TestUnknownRestPolicy(t *testing.T) {
	cfg := &config.Config{}
	cfg.Leave.RestDays = "saturday"
	_, err := NewHandler(cfg, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestParseLeaveFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/leave-requests?status=pending&from=2025-10-01&to=2025-10-31", nil)
	filter, err := parseLeaveFilter(req)
	require.NoError(t, err)
	require.NotNil(t, filter.Status)
	assert.Equal(t, domain.LeaveStatusPending, *filter.Status)
	assert.Equal(t, "2025-10-01", filter.From.String())
	assert.Equal(t, "2025-10-31", filter.To.String())

	req = httptest.NewRequest(http.MethodGet, "/leave-requests?status=archived", nil)
	_, err = parseLeaveFilter(req)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/leave-requests?from=2025-10-31&to=2025-10-01", nil)
	_, err = parseLeaveFilter(req)
	assert.ErrorIs(t, err, calendar.ErrInvalidRange)
	msg, ok := dateErrorMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, "2025-10-31")
}

func TestHolidayDateTag(t *testing.T) {
	h := newTestHandler(t, "sunday")

	req := httptest.NewRequest(http.MethodPost, "/holidays/", strings.NewReader(`{"name":"Festivo","date":"2025-13-01"}`))
	req.AddCookie(sessionCookie(t, h, domain.RoleAdministrator))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Date debe tener el formato AAAA-MM-DD", resp.Message)
}

func TestPreviewRejectsOversizedRange(t *testing.T) {
	h := newTestHandler(t, "sunday")
	cookie := sessionCookie(t, h, domain.RoleEmployee)

	resp := postPreview(t, h, cookie, `{"startDate":"0001-01-01","endDate":"9999-12-31"}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "El rango no puede superar 366 días", resp.Message)
	assert.Nil(t, resp.Data.Included)

	// exactly the limit is still counted
	resp = postPreview(t, h, cookie, `{"startDate":"2024-01-01","endDate":"2024-12-31"}`)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 366, resp.Data.CalendarDays)

	resp = postPreview(t, h, cookie, `{"startDate":"2024-01-01","endDate":"2025-01-01"}`)
	assert.False(t, resp.Success)
}

func TestValidateLeaveBreakdown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Leave.MaxRangeDays = 30

	tests := []struct {
		name      string
		breakdown leaveBreakdown
		message   string
	}{
		{name: "working days", breakdown: leaveBreakdown{BusinessDays: 5, CalendarDays: 7}},
		{name: "only rest days", breakdown: leaveBreakdown{BusinessDays: 0, CalendarDays: 1}, message: "El rango no contiene días hábiles"},
		{name: "at the limit", breakdown: leaveBreakdown{BusinessDays: 26, CalendarDays: 30}},
		{name: "over the limit", breakdown: leaveBreakdown{BusinessDays: 27, CalendarDays: 31}, message: "El rango no puede superar 30 días"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateLeaveBreakdown(cfg, &tc.breakdown)
			if tc.message == "" {
				assert.NoError(t, err)
				return
			}
			msg, ok := leaveErrorMessage(err)
			assert.True(t, ok)
			assert.Equal(t, tc.message, msg)
		})
	}

	cfg.Leave.MaxRangeDays = 0
	assert.NoError(t, validateLeaveBreakdown(cfg, &leaveBreakdown{BusinessDays: 1, CalendarDays: defaultMaxRangeDays}))
	assert.Error(t, validateLeaveBreakdown(cfg, &leaveBreakdown{BusinessDays: 1, CalendarDays: defaultMaxRangeDays + 1}))
}

func TestNewLeaveRequestKeepsPreviewDays(t *testing.T) {
	h := newTestHandler(t, "sunday")
	cookie := sessionCookie(t, h, domain.RoleEmployee)
	preview := postPreview(t, h, cookie, `{"startDate":"2025-10-13","endDate":"2025-10-29"}`)
	require.True(t, preview.Success)

	breakdown, err := h.countLeaveDays("2025-10-13", "2025-10-29")
	require.NoError(t, err)
	require.NoError(t, validateLeaveBreakdown(h.config, breakdown))

	requester := &domain.User{ID: 10, FullName: "Ana Gómez"}
	lr := newLeaveRequest(requester, domain.LeaveTypeVacation, "viaje", breakdown)
	assert.Equal(t, int64(10), lr.UserID)
	assert.Equal(t, "Ana Gómez", lr.RequesterName)
	assert.Equal(t, preview.Data.StartDate, lr.StartDate)
	assert.Equal(t, preview.Data.EndDate, lr.EndDate)
	assert.Equal(t, preview.Data.BusinessDays, lr.BusinessDays)
	assert.Equal(t, preview.Data.CalendarDays, lr.CalendarDays)
	assert.Equal(t, 15, lr.BusinessDays)

	_, err = h.countLeaveDays("2025-01-01", "2026-06-30")
	msg, ok := leaveErrorMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "El rango no puede superar 366 días", msg)
}
