// repository/progress/repo.go
package progressrepo

import (
	"context"
	"database/sql"
	"time"

	"campusportal/model"
)

type Repo interface {
	Get(ctx context.Context, userID, bookID int64) (*model.ReadingProgress, error)
	Upsert(ctx context.Context, userID, bookID, currentPage, totalPages int64, now time.Time) error
	SetRating(ctx context.Context, tx *sql.Tx, userID, bookID int64, rating int) error
	RefreshAvgRating(ctx context.Context, tx *sql.Tx, bookID int64) error

	AddBookmark(ctx context.Context, b *model.Bookmark) error
	ListBookmarks(ctx context.Context, userID, bookID int64) ([]model.Bookmark, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Get(ctx context.Context, userID, bookID int64) (*model.ReadingProgress, error) {
	const q = `
	SELECT id, user_id, book_id, current_page, total_pages, completed, rating, completed_at, updated_at
	FROM reading_progress
	WHERE user_id = $1 AND book_id = $2`
	var p model.ReadingProgress
	err := r.db.QueryRowContext(ctx, q, userID, bookID).
		Scan(&p.ID, &p.UserID, &p.BookID, &p.CurrentPage, &p.TotalPages,
			&p.Completed, &p.Rating, &p.CompletedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ProgressPercentage = p.Percentage()
	return &p, nil
}

func (r *repo) Upsert(ctx context.Context, userID, bookID, currentPage, totalPages int64, now time.Time) error {
	// completed flips once and stays; completed_at keeps its first value.
	const q = `
	INSERT INTO reading_progress (user_id, book_id, current_page, total_pages, completed, completed_at, updated_at)
	VALUES ($1,$2,$3,$4,$3 >= $4, CASE WHEN $3 >= $4 THEN $5 END, $5)
	ON CONFLICT (user_id, book_id) DO UPDATE SET
		current_page = EXCLUDED.current_page,
		total_pages = EXCLUDED.total_pages,
		completed = reading_progress.completed OR EXCLUDED.completed,
		completed_at = COALESCE(reading_progress.completed_at, EXCLUDED.completed_at),
		updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, userID, bookID, currentPage, totalPages, now)
	return err
}

func (r *repo) SetRating(ctx context.Context, tx *sql.Tx, userID, bookID int64, rating int) error {
	const q = `
	UPDATE reading_progress
	SET rating = $3
	WHERE user_id = $1 AND book_id = $2`
	res, err := tx.ExecContext(ctx, q, userID, bookID, rating)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) RefreshAvgRating(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
	UPDATE books
	SET avg_rating = COALESCE((
		SELECT AVG(rating)::NUMERIC(3,2)
		FROM reading_progress
		WHERE book_id = $1 AND rating IS NOT NULL
	), 0)
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

func (r *repo) AddBookmark(ctx context.Context, b *model.Bookmark) error {
	const q = `
	INSERT INTO bookmarks (user_id, book_id, page, note)
	VALUES ($1,$2,$3,$4)
	RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, b.UserID, b.BookID, b.Page, b.Note).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) ListBookmarks(ctx context.Context, userID, bookID int64) ([]model.Bookmark, error) {
	const q = `
	SELECT id, user_id, book_id, page, note, created_at
	FROM bookmarks
	WHERE user_id = $1 AND book_id = $2
	ORDER BY page ASC`
	rows, err := r.db.QueryContext(ctx, q, userID, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.BookID, &b.Page, &b.Note, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
