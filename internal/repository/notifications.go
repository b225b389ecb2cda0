package repository

import (
	"database/sql"
	"time"

	"github.com/gestion-humana/portal/backend/internal/domain"
)

// InsertNotifications stores a batch of notifications in one transaction.
func (r *Repository) InsertNotifications(notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

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
		INSERT INTO notifications (user_id, kind, title, link)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	for _, n := range notifications {
		if err := tx.QueryRowContext(ctx, query, n.UserID, n.Kind, n.Title, n.Link).Scan(&n.ID, &n.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetNotificationsByUserID(userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, kind, title, link, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{UserID: userID}
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Link, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *Repository) CountUnreadNotifications(userID int64) (int, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// MarkNotificationRead returns sql.ErrNoRows when the notification does not belong to the user.
func (r *Repository) MarkNotificationRead(userID, id int64) (time.Time, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING read_at
	`
	var readAt time.Time
	if err := r.dbpool.QueryRowContext(ctx, query, id, userID).Scan(&readAt); err != nil {
		return time.Time{}, err
	}

	return readAt, nil
}

func (r *Repository) MarkAllNotificationsRead(userID int64) (int64, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
