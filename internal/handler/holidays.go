package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/domain"
	"github.com/gestion-humana/portal/backend/internal/utils"
)

func holidayConstraintError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "holidays_date_key"
}

func (h *Handler) GetAllHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.repository.GetAllHolidays()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Festivos obtenidos", holidays)
}

func (h *Handler) GetHoliday(w http.ResponseWriter, r *http.Request) {
	holiday := r.Context().Value(HolidayCtx).(*domain.Holiday)
	h.successResponse(w, r, "Festivo obtenido", holiday)
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name" validate:"required,max=100"`
		Date      string `json:"date" validate:"required,calendardate"`
		Recurring bool   `json:"recurring"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		msg, _ := dateErrorMessage(err)
		h.errorResponse(w, r, msg)
		return
	}

	holiday := &domain.Holiday{Name: req.Name, Date: date, Recurring: req.Recurring}
	if err := h.repository.CreateHoliday(holiday); err != nil {
		if holidayConstraintError(err) {
			h.errorResponse(w, r, "Ya existe un festivo en esa fecha")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Festivo creado", holiday)
}

// ImportHolidays loads a CSV file uploaded in the "file" field.
func (h *Handler) ImportHolidays(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(h.config.Server.MaxUploadSize); err != nil {
		h.errorResponse(w, r, "El archivo es demasiado grande o no es válido")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.errorResponse(w, r, "Falta el archivo CSV")
		return
	}
	defer file.Close()

	holidays, err := utils.ParseHolidaysCSV(file)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpsertHolidays(holidays); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Festivos importados", holidays)
}

func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	holiday := r.Context().Value(HolidayCtx).(*domain.Holiday)

	var req struct {
		Name      *string `json:"name" validate:"omitempty,max=100"`
		Date      *string `json:"date" validate:"omitempty,calendardate"`
		Recurring *bool   `json:"recurring"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		holiday.Name = *req.Name
	}
	if req.Date != nil {
		date, err := calendar.ParseDate(*req.Date)
		if err != nil {
			msg, _ := dateErrorMessage(err)
			h.errorResponse(w, r, msg)
			return
		}
		holiday.Date = date
	}
	if req.Recurring != nil {
		holiday.Recurring = *req.Recurring
	}

	if err := h.repository.UpdateHoliday(holiday); err != nil {
		switch {
		case holidayConstraintError(err):
			h.errorResponse(w, r, "Ya existe un festivo en esa fecha")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "No se pudo actualizar el festivo, inténtalo de nuevo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Festivo actualizado", holiday)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	holiday := r.Context().Value(HolidayCtx).(*domain.Holiday)

	if err := h.repository.DeleteHoliday(holiday.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Festivo eliminado", nil)
}
