package repository

import (
	"github.com/gestion-humana/portal/backend/internal/domain"
)

const announcementColumns = `id, slug, title, body, author_id, pinned, published_at, version`

func (r *Repository) GetAllAnnouncements() ([]*domain.Announcement, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + announcementColumns + ` FROM announcements ORDER BY pinned DESC, published_at DESC`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	announcements := make([]*domain.Announcement, 0)
	for rows.Next() {
		a := &domain.Announcement{}
		dst := []any{&a.ID, &a.Slug, &a.Title, &a.Body, &a.AuthorID, &a.Pinned, &a.PublishedAt, &a.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return announcements, nil
}

func (r *Repository) GetAnnouncementBySlug(slug string) (*domain.Announcement, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE slug = $1`

	a := &domain.Announcement{}
	dst := []any{&a.ID, &a.Slug, &a.Title, &a.Body, &a.AuthorID, &a.Pinned, &a.PublishedAt, &a.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, slug).Scan(dst...); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *Repository) CheckAnnouncementSlugIfExists(slug string) (bool, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	var isExists bool
	if err := r.dbpool.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM announcements WHERE slug = $1)`, slug).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

func (r *Repository) CreateAnnouncement(a *domain.Announcement) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO announcements (slug, title, body, author_id, pinned)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, published_at, version
	`
	if err := r.dbpool.QueryRowContext(ctx, query, a.Slug, a.Title, a.Body, a.AuthorID, a.Pinned).Scan(&a.ID, &a.PublishedAt, &a.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateAnnouncement(a *domain.Announcement) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE announcements
		SET title = $1, body = $2, pinned = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`
	if err := r.dbpool.QueryRowContext(ctx, query, a.Title, a.Body, a.Pinned, a.ID, a.Version).Scan(&a.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAnnouncement(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id); err != nil {
		return err
	}

	return nil
}
