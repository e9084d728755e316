// repository/borrow/repo.go
package borrowrepo

import (
	"context"
	"database/sql"
	"time"

	"campusportal/model"
)

type HistoryRow struct {
	BorrowID     int64               `json:"borrow_id"`
	BookID       int64               `json:"book_id"`
	BookTitle    string              `json:"book_title"`
	BorrowedAt   time.Time           `json:"borrowed_at"`
	DueAt        time.Time           `json:"due_at"`
	ReturnedAt   *time.Time          `json:"returned_at,omitempty"`
	Status       model.BorrowStatus  `json:"status"`
	RenewalCount int                 `json:"renewal_count"`
	FineAmount   float64             `json:"fine_amount"`
	Condition    model.BookCondition `json:"condition"`
}

type Repo interface {
	// Borrow lifecycle (all row mutations ride the caller's tx)
	HasOpenBorrow(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	InsertBorrow(ctx context.Context, tx *sql.Tx, userID, bookID int64, borrowedAt, dueAt time.Time, maxRenewals int) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, borrowID int64) (*model.BorrowRecord, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, borrowID int64, returnedAt time.Time, condition model.BookCondition, fine float64) error
	UpdateRenewal(ctx context.Context, tx *sql.Tx, borrowID int64, newDue time.Time, newCount int) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, borrowID int64, status model.BorrowStatus, fine float64) error

	Delete(ctx context.Context, borrowID int64) error

	// Reads
	ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context, limit, offset int64) ([]HistoryRow, int64, error)

	// Sweep persists borrowed->overdue and refreshes fines in one statement.
	SweepOverdue(ctx context.Context, now time.Time, perDiem float64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) HasOpenBorrow(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	const q = `
	SELECT COUNT(*)
	FROM borrow_records
	WHERE user_id = $1
	AND book_id = $2
	AND status IN ('borrowed','overdue')`
	var n int64
	if err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) InsertBorrow(ctx context.Context, tx *sql.Tx, userID, bookID int64, borrowedAt, dueAt time.Time, maxRenewals int) (int64, error) {
	const q = `
	INSERT INTO borrow_records (user_id, book_id, borrowed_at, due_at, status, renewal_count, max_renewals, fine_amount, condition)
	VALUES ($1,$2,$3,$4,'borrowed',0,$5,0,'good')
	RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, q, userID, bookID, borrowedAt, dueAt, maxRenewals).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

const borrowCols = `id, user_id, book_id, borrowed_at, due_at, returned_at, status, renewal_count, max_renewals, fine_amount, condition`

func scanBorrow(row *sql.Row) (*model.BorrowRecord, error) {
	var b model.BorrowRecord
	err := row.Scan(&b.ID, &b.UserID, &b.BookID, &b.BorrowedAt, &b.DueAt, &b.ReturnedAt,
		&b.Status, &b.RenewalCount, &b.MaxRenewals, &b.FineAmount, &b.Condition)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, borrowID int64) (*model.BorrowRecord, error) {
	return scanBorrow(tx.QueryRowContext(ctx, `
	SELECT `+borrowCols+`
	FROM borrow_records
	WHERE id = $1
	FOR UPDATE`, borrowID))
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, borrowID int64, returnedAt time.Time, condition model.BookCondition, fine float64) error {
	const q = `
	UPDATE borrow_records
	SET status = 'returned',
		returned_at = $2,
		condition = $3,
		fine_amount = $4
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, borrowID, returnedAt, condition, fine)
	return err
}

func (r *repo) UpdateRenewal(ctx context.Context, tx *sql.Tx, borrowID int64, newDue time.Time, newCount int) error {
	const q = `
	UPDATE borrow_records
	SET due_at = $2,
		renewal_count = $3
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, borrowID, newDue, newCount)
	return err
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, borrowID int64, status model.BorrowStatus, fine float64) error {
	const q = `
	UPDATE borrow_records
	SET status = $2,
		fine_amount = $3
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, borrowID, status, fine)
	return err
}

func (r *repo) Delete(ctx context.Context, borrowID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM borrow_records WHERE id = $1`, borrowID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error) {
	const q = `
	SELECT
		br.id            AS borrow_id,
		br.book_id       AS book_id,
		b.title          AS book_title,
		br.borrowed_at   AS borrowed_at,
		br.due_at        AS due_at,
		br.returned_at   AS returned_at,
		br.status        AS status,
		br.renewal_count AS renewal_count,
		br.fine_amount   AS fine_amount,
		br.condition     AS condition
	FROM borrow_records br
	JOIN books b ON b.id = br.book_id
	WHERE br.user_id = $1
	ORDER BY br.borrowed_at DESC, br.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHistory(rows)
}

func (r *repo) ListAll(ctx context.Context, limit, offset int64) ([]HistoryRow, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM borrow_records`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
	SELECT
		br.id, br.book_id, b.title, br.borrowed_at, br.due_at, br.returned_at,
		br.status, br.renewal_count, br.fine_amount, br.condition
	FROM borrow_records br
	JOIN books b ON b.id = br.book_id
	ORDER BY br.borrowed_at DESC, br.id DESC
	LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectHistory(rows)
	return out, total, err
}

func collectHistory(rows *sql.Rows) ([]HistoryRow, error) {
	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(&h.BorrowID, &h.BookID, &h.BookTitle, &h.BorrowedAt, &h.DueAt,
			&h.ReturnedAt, &h.Status, &h.RenewalCount, &h.FineAmount, &h.Condition); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repo) SweepOverdue(ctx context.Context, now time.Time, perDiem float64) (int64, error) {
	// Flip stale 'borrowed' rows and refresh fines; GREATEST keeps fines monotonic.
	const q = `
	UPDATE borrow_records
	SET status = 'overdue',
		fine_amount = GREATEST(fine_amount, CEIL(EXTRACT(EPOCH FROM ($1::timestamptz - due_at)) / 86400) * $2)
	WHERE status IN ('borrowed','overdue')
	AND due_at < $1`
	res, err := r.db.ExecContext(ctx, q, now, perDiem)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
