// repository/book/repo.go
package bookrepo

import (
	"context"
	"database/sql"
	"errors"
)

type Book struct {
	ID              int64
	Title           string
	Author          string
	Category        string
	ISBN            string
	TotalCopies     int64
	AvailableCopies int64
	AvgRating       float64
}

type Repo interface {
	CreateBook(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error)
	AddCopies(ctx context.Context, bookID int64, n int64) error
	List(ctx context.Context, search string) ([]Book, error)
	Detail(ctx context.Context, id int64) (*Book, error)
	Delete(ctx context.Context, id int64) error

	Exists(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	// ClaimCopy decrements available_copies only while a copy remains.
	// Returns false when none was left to claim.
	ClaimCopy(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	ReleaseCopy(ctx context.Context, tx *sql.Tx, bookID int64) error
	// RetireCopy shrinks the inventory for a copy that will not come back.
	RetireCopy(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) CreateBook(ctx context.Context, title, author, category, isbn string, copies int64) (int64, error) {
	const q = `
INSERT INTO books (title, author, category, isbn, total_copies, available_copies)
VALUES ($1,$2,$3,$4,$5,$5)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, title, author, category, isbn, copies).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) AddCopies(ctx context.Context, bookID int64, n int64) error {
	if n <= 0 {
		return errors.New("n must be > 0")
	}
	const q = `
UPDATE books
SET total_copies = total_copies + $2,
    available_copies = available_copies + $2
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, bookID, n)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) List(ctx context.Context, search string) ([]Book, error) {
	const q = `
	SELECT id, title, author, category, isbn, total_copies, available_copies, avg_rating
	FROM books
	WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%')
	ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.ISBN,
			&b.TotalCopies, &b.AvailableCopies, &b.AvgRating); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*Book, error) {
	const q = `
SELECT id, title, author, category, isbn, total_copies, available_copies, avg_rating
FROM books
WHERE id = $1`
	var b Book
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Title, &b.Author, &b.Category,
		&b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.AvgRating); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Exists(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `SELECT 1 FROM books WHERE id = $1`
	var one int
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) ClaimCopy(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	// Conditional decrement: the guard makes the last copy race-free.
	const q = `
	UPDATE books
	SET available_copies = available_copies - 1
	WHERE id = $1
	AND available_copies > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) ReleaseCopy(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
	UPDATE books
	SET available_copies = available_copies + 1
	WHERE id = $1
	AND available_copies < total_copies`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

func (r *repo) RetireCopy(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
	UPDATE books
	SET total_copies = total_copies - 1
	WHERE id = $1
	AND total_copies > available_copies`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}
