package handler

import (
	"context"
	"io"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/domain"
	"github.com/gestion-humana/portal/backend/internal/notify"
	"github.com/gestion-humana/portal/backend/internal/repository"
)

// AvatarUploader stores a profile picture and returns its public URL.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID int64, file io.Reader) (string, error)
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	notifier    *notify.Dispatcher
	redisClient *redis.Client
	avatars     AvatarUploader
	restPolicy  calendar.RestDayPolicy
	sanitizer   *bluemonday.Policy

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifier *notify.Dispatcher, rdb *redis.Client, avatars AvatarUploader) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	es := es.New()
	uni := ut.New(es, es)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerCalendarDate(validate, trans); err != nil {
		return nil, err
	}

	restPolicy, err := calendar.PolicyByName(cfg.Leave.RestDays)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		notifier:    notifier,
		redisClient: rdb,
		avatars:     avatars,
		restPolicy:  restPolicy,
		sanitizer:   bluemonday.UGCPolicy(),

		Mux: chi.NewRouter(),
	}, nil
}

// registerCalendarDate adds the "calendardate" tag for YYYY-MM-DD strings.
func registerCalendarDate(validate *validator.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := calendar.ParseDate(fl.Field().String())
		return err == nil
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("calendardate", trans,
		func(ut ut.Translator) error {
			return ut.Add("calendardate", "{0} debe tener el formato AAAA-MM-DD", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("calendardate", fe.Field())
			return t
		},
	)
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	admin := h.RequiredRole([]domain.Role{domain.RoleAdministrator})
	approver := h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleAdministrator})

	// everything below requires a session
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Put("/avatar", h.UpdateMyAvatar)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(admin).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(admin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(admin).Delete("/", h.DeleteUser)
				r.With(admin).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/leave-requests", func(r chi.Router) {
			// the preview only counts days, it never touches the requester
			r.Post("/preview", h.PreviewLeaveRequest)

			r.Group(func(r chi.Router) {
				r.Use(h.myInfo)
				r.With(h.preventInactiveUser).Post("/", h.CreateLeaveRequest)
				r.Get("/mine", h.GetMyLeaveRequests)
				r.With(approver).Get("/", h.GetLeaveRequests)
				r.With(approver).Get("/export", h.ExportLeaveRequests)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.leaveRequest)
					r.Get("/", h.GetLeaveRequest)
					r.With(approver).Post("/approve", h.ApproveLeaveRequest)
					r.With(approver).Post("/reject", h.RejectLeaveRequest)
					r.Post("/cancel", h.CancelLeaveRequest)
				})
			})
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.GetAllHolidays)
			r.With(admin).Post("/", h.CreateHoliday)
			r.With(admin).Post("/import", h.ImportHolidays)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.holiday)
				r.Get("/", h.GetHoliday)
				r.With(admin).Patch("/", h.UpdateHoliday)
				r.With(admin).Delete("/", h.DeleteHoliday)
			})
		})

		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", h.GetAllAnnouncements)
			r.With(admin, h.myInfo).Post("/", h.CreateAnnouncement)
			r.Route("/{slug}", func(r chi.Router) {
				r.Use(h.announcement)
				r.Get("/", h.GetAnnouncement)
				r.With(admin).Patch("/", h.UpdateAnnouncement)
				r.With(admin).Delete("/", h.DeleteAnnouncement)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyNotifications)
			r.Get("/unread-count", h.GetUnreadNotificationCount)
			r.Post("/read-all", h.MarkAllNotificationsRead)
			r.Post("/{id}/read", h.MarkNotificationRead)
		})
	})
}
