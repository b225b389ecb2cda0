package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/gestion-humana/portal/backend/internal/domain"
	"github.com/gestion-humana/portal/backend/internal/utils"
)

// userConstraintError maps a unique or foreign key violation on users to a
// message for the client.
func userConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return errors.New("El nombre de usuario ya existe")
	case "users_email_key":
		return errors.New("El correo ya existe")
	case "users_supervisor_id_fkey":
		return errors.New("El supervisor no existe")
	}
	return nil
}

// checkSupervisor makes sure id points to an active supervisor or administrator.
func (h *Handler) checkSupervisor(id int64) (string, error) {
	supervisor, err := h.repository.GetUserByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "El supervisor no existe", nil
		}
		return "", err
	}
	if !supervisor.IsActive || supervisor.Role == domain.RoleEmployee {
		return "El supervisor debe ser un supervisor o administrador activo", nil
	}
	return "", nil
}

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Usuarios obtenidos", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string `json:"username" validate:"required,alphanum"`
		FullName     string `json:"fullName" validate:"required"`
		Email        string `json:"email" validate:"required,email"`
		Role         string `json:"role" validate:"required,oneof=employee supervisor administrator"`
		Department   string `json:"department" validate:"max=100"`
		Position     string `json:"position" validate:"max=100"`
		SupervisorID *int64 `json:"supervisorID" validate:"omitempty,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.SupervisorID != nil {
		msg, err := h.checkSupervisor(*req.SupervisorID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if msg != "" {
			h.errorResponse(w, r, msg)
			return
		}
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
		Department:   req.Department,
		Position:     req.Position,
		SupervisorID: req.SupervisorID,
	}

	if err := h.repository.CreateUser(user); err != nil {
		if cerr := userConstraintError(err); cerr != nil {
			h.badRequest(w, r, cerr)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.notifier.SendMail(r.Context(), domain.MailMessage{
		Type: domain.MailCreateUser,
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: req.FullName,
			Username: req.Username,
			Password: password,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Usuario creado", user)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "Usuario obtenido", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName     *string `json:"fullName"`
		Email        *string `json:"email" validate:"omitempty,email"`
		Role         *string `json:"role" validate:"omitempty,oneof=employee supervisor administrator"`
		Department   *string `json:"department" validate:"omitempty,max=100"`
		Position     *string `json:"position" validate:"omitempty,max=100"`
		SupervisorID *int64  `json:"supervisorID" validate:"omitempty,gte=0"` // 0 removes the supervisor
		IsActive     *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Position != nil {
		user.Position = *req.Position
	}
	if req.SupervisorID != nil {
		switch {
		case *req.SupervisorID == 0:
			user.SupervisorID = nil
		case *req.SupervisorID == user.ID:
			h.errorResponse(w, r, "Un usuario no puede ser su propio supervisor")
			return
		default:
			msg, err := h.checkSupervisor(*req.SupervisorID)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}
			if msg != "" {
				h.errorResponse(w, r, msg)
				return
			}
			user.SupervisorID = req.SupervisorID
		}
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateUser(user); err != nil {
		if cerr := userConstraintError(err); cerr != nil {
			h.badRequest(w, r, cerr)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "No se pudo actualizar el usuario, inténtalo de nuevo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Usuario actualizado", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Usuario eliminado", nil)
}

func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Contraseña actualizada", nil)
}
