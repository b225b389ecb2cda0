package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/domain"
	"github.com/gestion-humana/portal/backend/internal/repository"
)

// leavePolicy is the configured rest day policy, extended with the stored
// holidays when they are enabled.
func (h *Handler) leavePolicy() (calendar.RestDayPolicy, error) {
	if !h.config.Leave.IncludeHolidays {
		return h.restPolicy, nil
	}

	holidays, err := h.repository.GetAllHolidays()
	if err != nil {
		return nil, err
	}

	specs := make([]calendar.HolidaySpec, 0, len(holidays))
	for _, holiday := range holidays {
		specs = append(specs, holiday.Spec())
	}

	return calendar.AnyOf(h.restPolicy, calendar.HolidayRest(calendar.NewHolidayCalendar(specs...))), nil
}

// dateErrorMessage turns a date validation error into a message for the
// client. The second result is false when err is not a date error.
func dateErrorMessage(err error) (string, bool) {
	var formatErr *calendar.InvalidDateFormatError
	var rangeErr *calendar.InvalidRangeError
	switch {
	case errors.As(err, &formatErr):
		return fmt.Sprintf("Fecha inválida %q, use el formato AAAA-MM-DD", formatErr.Input), true
	case errors.As(err, &rangeErr):
		return fmt.Sprintf("La fecha de inicio %s es posterior a la fecha de fin %s", rangeErr.Start, rangeErr.End), true
	}
	return "", false
}

// leaveRuleError is a leave range rejected by a business rule. Its text is
// shown to the client as is.
type leaveRuleError struct {
	msg string
}

func (e *leaveRuleError) Error() string {
	return e.msg
}

// leaveErrorMessage extends dateErrorMessage with the leave rules.
func leaveErrorMessage(err error) (string, bool) {
	var ruleErr *leaveRuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.msg, true
	}
	return dateErrorMessage(err)
}

const defaultMaxRangeDays = 366

func maxRangeDays(cfg *config.Config) int {
	if cfg.Leave.MaxRangeDays <= 0 {
		return defaultMaxRangeDays
	}
	return cfg.Leave.MaxRangeDays
}

// checkLeaveRange rejects ranges longer than the configured maximum before
// any day is visited.
func checkLeaveRange(cfg *config.Config, dr calendar.DateRange) error {
	if limit := maxRangeDays(cfg); calendar.TotalCalendarDays(dr) > limit {
		return &leaveRuleError{msg: fmt.Sprintf("El rango no puede superar %d días", limit)}
	}
	return nil
}

// validateLeaveBreakdown applies the rules a breakdown must pass to be stored.
func validateLeaveBreakdown(cfg *config.Config, b *leaveBreakdown) error {
	if limit := maxRangeDays(cfg); b.CalendarDays > limit {
		return &leaveRuleError{msg: fmt.Sprintf("El rango no puede superar %d días", limit)}
	}
	if b.BusinessDays == 0 {
		return &leaveRuleError{msg: "El rango no contiene días hábiles"}
	}
	return nil
}

// newLeaveRequest stores exactly the days of the breakdown the preview shows.
func newLeaveRequest(requester *domain.User, leaveType domain.LeaveType, reason string, b *leaveBreakdown) *domain.LeaveRequest {
	return &domain.LeaveRequest{
		UserID:        requester.ID,
		Type:          leaveType,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		BusinessDays:  b.BusinessDays,
		CalendarDays:  b.CalendarDays,
		Reason:        reason,
		RequesterName: requester.FullName,
	}
}

type leaveBreakdown struct {
	StartDate    calendar.CalendarDate   `json:"startDate"`
	EndDate      calendar.CalendarDate   `json:"endDate"`
	BusinessDays int                     `json:"businessDays"`
	CalendarDays int                     `json:"calendarDays"`
	Included     []calendar.CalendarDate `json:"included"`
	Excluded     []calendar.CalendarDate `json:"excluded"`
}

// countLeaveDays is the single place where requested days are computed, for
// both the preview and the stored request.
func (h *Handler) countLeaveDays(start, end string) (*leaveBreakdown, error) {
	dr, err := calendar.ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	if err := checkLeaveRange(h.config, dr); err != nil {
		return nil, err
	}

	policy, err := h.leavePolicy()
	if err != nil {
		return nil, err
	}

	b, err := calendar.CountBusinessDays(dr, policy)
	if err != nil {
		return nil, err
	}

	return &leaveBreakdown{
		StartDate:    dr.Start,
		EndDate:      dr.End,
		BusinessDays: b.Count,
		CalendarDays: calendar.TotalCalendarDays(dr),
		Included:     b.Included,
		Excluded:     b.Excluded,
	}, nil
}

func (h *Handler) PreviewLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"startDate" validate:"required"`
		EndDate   string `json:"endDate" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	breakdown, err := h.countLeaveDays(req.StartDate, req.EndDate)
	if err != nil {
		if msg, ok := leaveErrorMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Días calculados", breakdown)
}

func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Type      string `json:"type" validate:"required,oneof=vacation personal sick unpaid"`
		StartDate string `json:"startDate" validate:"required"`
		EndDate   string `json:"endDate" validate:"required"`
		Reason    string `json:"reason" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	breakdown, err := h.countLeaveDays(req.StartDate, req.EndDate)
	if err != nil {
		if msg, ok := leaveErrorMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := validateLeaveBreakdown(h.config, breakdown); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	lr := newLeaveRequest(myInfo, domain.LeaveType(req.Type), req.Reason, breakdown)

	if err := h.repository.CreateLeaveRequest(lr); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, repository.ErrLeaveOverlap):
			h.errorResponse(w, r, "Ya tienes una solicitud pendiente o aprobada en esas fechas")
		case errors.As(err, &pgErr) && pgErr.Code == "23514":
			h.errorResponse(w, r, "Los días de la solicitud no son válidos")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	approvers, err := h.repository.GetApprovers(myInfo)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// the request is stored; a failed notification must not turn it into an error
	if err := h.notifier.LeaveRequested(r.Context(), lr, myInfo, approvers); err != nil {
		slog.Error("no se pudo notificar la solicitud", "leaveRequestID", lr.ID, "error", err)
	}

	h.successResponse(w, r, "Solicitud creada", lr)
}

// parseLeaveFilter reads the status, from and to query parameters.
func parseLeaveFilter(r *http.Request) (domain.LeaveRequestFilter, error) {
	filter := domain.LeaveRequestFilter{}
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := domain.LeaveStatus(v)
		switch status {
		case domain.LeaveStatusPending, domain.LeaveStatusApproved, domain.LeaveStatusRejected, domain.LeaveStatusCancelled:
		default:
			return filter, fmt.Errorf("Estado desconocido %q", v)
		}
		filter.Status = &status
	}
	if v := q.Get("from"); v != "" {
		from, err := calendar.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := calendar.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil {
		if _, err := calendar.NewDateRange(*filter.From, *filter.To); err != nil {
			return filter, err
		}
	}

	return filter, nil
}

// approverFilter restricts supervisors to their direct reports.
func (h *Handler) approverFilter(w http.ResponseWriter, r *http.Request) (domain.LeaveRequestFilter, bool) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	filter, err := parseLeaveFilter(r)
	if err != nil {
		if msg, ok := dateErrorMessage(err); ok {
			h.errorResponse(w, r, msg)
			return filter, false
		}
		h.badRequest(w, r, err)
		return filter, false
	}

	if myInfo.Role != domain.RoleAdministrator {
		filter.SupervisorID = &myInfo.ID
	}

	return filter, true
}

func (h *Handler) GetMyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	filter, err := parseLeaveFilter(r)
	if err != nil {
		if msg, ok := dateErrorMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.badRequest(w, r, err)
		return
	}
	filter.UserID = &myInfo.ID

	requests, err := h.repository.ListLeaveRequests(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Solicitudes obtenidas", requests)
}

func (h *Handler) GetLeaveRequests(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.approverFilter(w, r)
	if !ok {
		return
	}

	requests, err := h.repository.ListLeaveRequests(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Solicitudes obtenidas", requests)
}

func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)
	h.successResponse(w, r, "Solicitud obtenida", lr)
}

func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveLeaveRequest(w, r, domain.LeaveStatusApproved)
}

func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveLeaveRequest(w, r, domain.LeaveStatusRejected)
}

func (h *Handler) resolveLeaveRequest(w http.ResponseWriter, r *http.Request, status domain.LeaveStatus) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	requester := r.Context().Value(RequesterCtx).(*domain.User)
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	var req struct {
		Comment string `json:"comment" validate:"max=500"`
	}

	// the body is optional
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !myInfo.CanResolve(requester) {
		h.errorResponse(w, r, "No puedes resolver esta solicitud")
		return
	}
	if lr.Status.IsFinal() {
		h.errorResponse(w, r, "La solicitud ya fue resuelta")
		return
	}

	lr.Status = status
	lr.ResolvedBy = &myInfo.ID
	lr.ResolverNote = req.Comment

	if err := h.repository.ResolveLeaveRequest(lr); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "La solicitud cambió mientras la revisabas, inténtalo de nuevo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.notifier.LeaveResolved(r.Context(), lr, requester, myInfo); err != nil {
		slog.Error("no se pudo notificar la resolución", "leaveRequestID", lr.ID, "error", err)
	}

	switch status {
	case domain.LeaveStatusApproved:
		h.successResponse(w, r, "Solicitud aprobada", lr)
	default:
		h.successResponse(w, r, "Solicitud rechazada", lr)
	}
}

func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	if lr.UserID != myInfo.ID {
		h.errorResponse(w, r, "Solo quien hizo la solicitud puede cancelarla")
		return
	}
	if lr.Status.IsFinal() {
		h.errorResponse(w, r, "Solo se pueden cancelar solicitudes pendientes")
		return
	}

	lr.Status = domain.LeaveStatusCancelled
	lr.ResolvedBy = &myInfo.ID

	if err := h.repository.ResolveLeaveRequest(lr); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "La solicitud ya fue resuelta")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Solicitud cancelada", lr)
}

type leaveRequestRow struct {
	ID                     int64  `csv:"id"`
	Requester              string `csv:"empleado"`
	Type                   string `csv:"tipo"`
	StartDate              string `csv:"inicio"`
	EndDate                string `csv:"fin"`
	BusinessDays           int    `csv:"dias_habiles"`
	CalendarDays           int    `csv:"dias_calendario"`
	RecomputedBusinessDays int    `csv:"dias_habiles_actuales"`
	Status                 string `csv:"estado"`
	RequestedAt            string `csv:"solicitada"`
}

// ExportLeaveRequests writes the filtered requests as CSV. Next to the stored
// business days it reports the count under today's policy and holidays, so
// requests affected by a later holiday change stand out.
func (h *Handler) ExportLeaveRequests(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.approverFilter(w, r)
	if !ok {
		return
	}

	requests, err := h.repository.ListLeaveRequests(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	policy, err := h.leavePolicy()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rows := make([]*leaveRequestRow, 0, len(requests))
	for _, lr := range requests {
		b, err := calendar.CountBusinessDays(lr.Range(), policy)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		rows = append(rows, &leaveRequestRow{
			ID:                     lr.ID,
			Requester:              lr.RequesterName,
			Type:                   string(lr.Type),
			StartDate:              lr.StartDate.String(),
			EndDate:                lr.EndDate.String(),
			BusinessDays:           lr.BusinessDays,
			CalendarDays:           lr.CalendarDays,
			RecomputedBusinessDays: b.Count,
			Status:                 string(lr.Status),
			RequestedAt:            lr.RequestedAt.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="solicitudes.csv"`)
	if err := gocsv.Marshal(rows, w); err != nil {
		h.logInternalServerError(r, err)
	}
}
