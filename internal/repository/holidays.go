package repository

import (
	"github.com/gestion-humana/portal/backend/internal/domain"
)

func (r *Repository) GetAllHolidays() ([]*domain.Holiday, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT id, name, date, recurring, created_at, version FROM holidays ORDER BY date`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]*domain.Holiday, 0)
	for rows.Next() {
		h := &domain.Holiday{}
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.Recurring, &h.CreatedAt, &h.Version); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

func (r *Repository) GetHolidayByID(id int64) (*domain.Holiday, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT name, date, recurring, created_at, version FROM holidays WHERE id = $1`

	h := &domain.Holiday{ID: id}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&h.Name, &h.Date, &h.Recurring, &h.CreatedAt, &h.Version); err != nil {
		return nil, err
	}

	return h, nil
}

func (r *Repository) CreateHoliday(h *domain.Holiday) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO holidays (name, date, recurring)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	if err := r.dbpool.QueryRowContext(ctx, query, h.Name, h.Date, h.Recurring).Scan(&h.ID, &h.CreatedAt, &h.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateHoliday(h *domain.Holiday) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE holidays
		SET name = $1, date = $2, recurring = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`
	if err := r.dbpool.QueryRowContext(ctx, query, h.Name, h.Date, h.Recurring, h.ID, h.Version).Scan(&h.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteHoliday(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id); err != nil {
		return err
	}

	return nil
}

// UpsertHolidays stores the holidays in one transaction, replacing the name and
// recurrence of any holiday already registered on the same date.
func (r *Repository) UpsertHolidays(holidays []*domain.Holiday) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO holidays (name, date, recurring)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE
		SET name = EXCLUDED.name, recurring = EXCLUDED.recurring, version = holidays.version + 1
		RETURNING id, created_at, version
	`
	for _, h := range holidays {
		if err := tx.QueryRowContext(ctx, query, h.Name, h.Date, h.Recurring).Scan(&h.ID, &h.CreatedAt, &h.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}
