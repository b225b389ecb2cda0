package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gestion-humana/portal/backend/internal/domain"
)

var ErrLeaveOverlap = errors.New("leave request overlaps an existing one")

const leaveRequestColumns = `
	lr.id,
	lr.user_id,
	lr.leave_type,
	lr.start_date,
	lr.end_date,
	lr.business_days,
	lr.calendar_days,
	lr.reason,
	lr.status,
	lr.requested_at,
	lr.resolved_at,
	lr.resolved_by,
	lr.resolver_note,
	u.full_name,
	lr.version
`

func scanLeaveRequest(row interface{ Scan(dest ...any) error }) (*domain.LeaveRequest, error) {
	lr := &domain.LeaveRequest{}
	var resolvedAt sql.NullTime
	var resolvedBy sql.NullInt64
	dst := []any{
		&lr.ID,
		&lr.UserID,
		&lr.Type,
		&lr.StartDate,
		&lr.EndDate,
		&lr.BusinessDays,
		&lr.CalendarDays,
		&lr.Reason,
		&lr.Status,
		&lr.RequestedAt,
		&resolvedAt,
		&resolvedBy,
		&lr.ResolverNote,
		&lr.RequesterName,
		&lr.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		lr.ResolvedAt = &resolvedAt.Time
	}
	if resolvedBy.Valid {
		lr.ResolvedBy = &resolvedBy.Int64
	}
	return lr, nil
}

// CreateLeaveRequest inserts a pending request. Requests of the same user are
// serialized with an advisory lock so two overlapping submissions cannot both pass
// the overlap check.
func (r *Repository) CreateLeaveRequest(lr *domain.LeaveRequest) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lr.UserID); err != nil {
		return err
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE user_id = $1
				AND status IN ('pending', 'approved')
				AND start_date <= $3
				AND end_date >= $2
		)
	`
	var overlaps bool
	if err := tx.QueryRowContext(ctx, query, lr.UserID, lr.StartDate, lr.EndDate).Scan(&overlaps); err != nil {
		return err
	}
	if overlaps {
		return ErrLeaveOverlap
	}

	query = `
		INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, business_days, calendar_days, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, requested_at, version
	`
	args := []any{lr.UserID, lr.Type, lr.StartDate, lr.EndDate, lr.BusinessDays, lr.CalendarDays, lr.Reason}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&lr.ID, &lr.Status, &lr.RequestedAt, &lr.Version); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetLeaveRequestByID(id int64) (*domain.LeaveRequest, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests lr JOIN users u ON u.id = lr.user_id WHERE lr.id = $1`
	return scanLeaveRequest(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) ListLeaveRequests(filter domain.LeaveRequestFilter) ([]*domain.LeaveRequest, error) {
	conds := []string{"TRUE"}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil {
		add("lr.user_id = $%d", *filter.UserID)
	}
	if filter.SupervisorID != nil {
		add("u.supervisor_id = $%d", *filter.SupervisorID)
	}
	if filter.Status != nil {
		add("lr.status = $%d", *filter.Status)
	}
	if filter.From != nil {
		add("lr.end_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("lr.start_date <= $%d", *filter.To)
	}

	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		JOIN users u ON u.id = lr.user_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY lr.requested_at DESC
	`

	return r.queryLeaveRequests(query, args...)
}

// GetStalePendingLeaveRequests returns the requests still pending that were submitted before the given instant.
func (r *Repository) GetStalePendingLeaveRequests(before time.Time) ([]*domain.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		JOIN users u ON u.id = lr.user_id
		WHERE lr.status = 'pending' AND lr.requested_at < $1
		ORDER BY lr.requested_at
	`
	return r.queryLeaveRequests(query, before)
}

func (r *Repository) queryLeaveRequests(query string, args ...any) ([]*domain.LeaveRequest, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// ResolveLeaveRequest moves a pending request to a final status. It returns
// sql.ErrNoRows when the request changed in the meantime or is no longer pending.
func (r *Repository) ResolveLeaveRequest(lr *domain.LeaveRequest) error {
	query := `
		UPDATE leave_requests
		SET
			status = $1,
			resolved_at = NOW(),
			resolved_by = $2,
			resolver_note = $3,
			version = version + 1
		WHERE id = $4 AND version = $5 AND status = 'pending'
		RETURNING resolved_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var resolvedAt time.Time
	args := []any{lr.Status, lr.ResolvedBy, lr.ResolverNote, lr.ID, lr.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&resolvedAt, &lr.Version); err != nil {
		return err
	}
	lr.ResolvedAt = &resolvedAt

	return nil
}
