package repository

import (
	"database/sql"
	"errors"

	"github.com/gestion-humana/portal/backend/internal/domain"
)

const userColumns = `id, username, password_hash, full_name, email, role, department, position, supervisor_id, avatar_url, is_active, created_at, version`

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	user := &domain.User{}
	var supervisorID sql.NullInt64
	dst := []any{
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&user.Role,
		&user.Department,
		&user.Position,
		&supervisorID,
		&user.AvatarURL,
		&user.IsActive,
		&user.CreatedAt,
		&user.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	if supervisorID.Valid {
		user.SupervisorID = &supervisorID.Int64
	}
	return user, nil
}

func (r *Repository) queryUsers(query string, args ...any) ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.dbpool.QueryRowContext(ctx, query, username))
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	return r.queryUsers(`SELECT ` + userColumns + ` FROM users ORDER BY full_name`)
}

func (r *Repository) GetActiveUsers() ([]*domain.User, error) {
	return r.queryUsers(`SELECT ` + userColumns + ` FROM users WHERE is_active ORDER BY full_name`)
}

// GetApprovers returns who may resolve the requests of user: the direct
// supervisor when there is an active one, otherwise every active administrator.
func (r *Repository) GetApprovers(user *domain.User) ([]*domain.User, error) {
	if user.SupervisorID != nil {
		supervisor, err := r.GetUserByID(*user.SupervisorID)
		switch {
		case err == nil && supervisor.IsActive:
			return []*domain.User{supervisor}, nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND is_active AND id <> $2`
	return r.queryUsers(query, domain.RoleAdministrator, user.ID)
}

func (r *Repository) UpdateUser(user *domain.User) error {
	query := `
		UPDATE users
		SET
			password_hash = $1,
			full_name = $2,
			email = $3,
			role = $4,
			department = $5,
			position = $6,
			supervisor_id = $7,
			avatar_url = $8,
			is_active = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING username, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{
		user.PasswordHash,
		user.FullName,
		user.Email,
		user.Role,
		user.Department,
		user.Position,
		user.SupervisorID,
		user.AvatarURL,
		user.IsActive,
		user.ID,
		user.Version,
	}
	dst := []any{&user.Username, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteUser(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `DELETE FROM users WHERE id = $1`
	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role, department, position, supervisor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_active, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role, user.Department, user.Position, user.SupervisorID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
