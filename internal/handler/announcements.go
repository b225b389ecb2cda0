package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gestion-humana/portal/backend/internal/domain"
)

type slugChecker interface {
	CheckAnnouncementSlugIfExists(slug string) (bool, error)
}

// uniqueAnnouncementSlug derives a slug from title, adding a numeric suffix
// until it is free.
func uniqueAnnouncementSlug(slugs slugChecker, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "comunicado"
	}

	result := base
	for i := 1; ; i++ {
		isExists, err := slugs.CheckAnnouncementSlugIfExists(result)
		if err != nil {
			return "", err
		}
		if !isExists {
			return result, nil
		}
		result = fmt.Sprintf("%s-%d", base, i)
	}
}

// sanitizeAnnouncementBody keeps the user generated HTML bluemonday allows.
// It reports false when nothing is left to show.
func sanitizeAnnouncementBody(policy *bluemonday.Policy, body string) (string, bool) {
	clean := policy.Sanitize(body)
	return clean, strings.TrimSpace(clean) != ""
}

func (h *Handler) GetAllAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.repository.GetAllAnnouncements()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Comunicados obtenidos", announcements)
}

func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(AnnouncementCtx).(*domain.Announcement)
	h.successResponse(w, r, "Comunicado obtenido", a)
}

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Title  string `json:"title" validate:"required,max=200"`
		Body   string `json:"body" validate:"required"`
		Pinned bool   `json:"pinned"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	body, ok := sanitizeAnnouncementBody(h.sanitizer, req.Body)
	if !ok {
		h.errorResponse(w, r, "El contenido del comunicado está vacío")
		return
	}

	s, err := uniqueAnnouncementSlug(h.repository, req.Title)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	a := &domain.Announcement{
		Slug:     s,
		Title:    strings.TrimSpace(req.Title),
		Body:     body,
		AuthorID: myInfo.ID,
		Pinned:   req.Pinned,
	}

	if err := h.repository.CreateAnnouncement(a); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "announcements_slug_key":
			h.errorResponse(w, r, "Otro comunicado con el mismo título se publicó a la vez, inténtalo de nuevo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	users, err := h.repository.GetActiveUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	recipients := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.ID != myInfo.ID {
			recipients = append(recipients, u)
		}
	}

	if err := h.notifier.AnnouncementPublished(r.Context(), a, recipients); err != nil {
		slog.Error("no se pudo notificar el comunicado", "slug", a.Slug, "error", err)
	}

	h.successResponse(w, r, "Comunicado publicado", a)
}

func (h *Handler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(AnnouncementCtx).(*domain.Announcement)

	var req struct {
		Title  *string `json:"title" validate:"omitempty,max=200"`
		Body   *string `json:"body"`
		Pinned *bool   `json:"pinned"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// the slug is kept so shared links stay valid
	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		body, ok := sanitizeAnnouncementBody(h.sanitizer, *req.Body)
		if !ok {
			h.errorResponse(w, r, "El contenido del comunicado está vacío")
			return
		}
		a.Body = body
	}
	if req.Pinned != nil {
		a.Pinned = *req.Pinned
	}

	if err := h.repository.UpdateAnnouncement(a); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "No se pudo actualizar el comunicado, inténtalo de nuevo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Comunicado actualizado", a)
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	a := r.Context().Value(AnnouncementCtx).(*domain.Announcement)

	if err := h.repository.DeleteAnnouncement(a.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Comunicado eliminado", nil)
}
