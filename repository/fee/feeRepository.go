// repository/fee/repo.go
package feerepo

import (
	"context"
	"database/sql"
	"time"

	"campusportal/model"
)

type Repo interface {
	// Fees
	InsertFee(ctx context.Context, f *model.Fee) error
	ListByUser(ctx context.Context, userID int64) ([]model.Fee, error)
	Summary(ctx context.Context, userID int64) (*model.FeeSummary, error)
	GetFeeForUpdate(ctx context.Context, tx *sql.Tx, feeID int64) (*model.Fee, error)
	SettleFee(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error

	// Library fines land as fees so they are payable like everything else.
	UpsertLibraryFine(ctx context.Context, tx *sql.Tx, userID, borrowID int64, amount float64, dueAt time.Time) error

	// Payments
	InsertPayment(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	FindPaymentByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error)
	MarkPaymentPaid(ctx context.Context, tx *sql.Tx, paymentID int64, paidAt time.Time) error
	MarkPaymentExpired(ctx context.Context, invoiceID string) error

	// Sweep flips stale pending fees to overdue.
	SweepOverdueFees(ctx context.Context, now time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const feeCols = `id, user_id, type, description, amount, paid_amount, due_at, status, paid_at, created_at`

func (r *repo) InsertFee(ctx context.Context, f *model.Fee) error {
	const q = `
	INSERT INTO fees (user_id, type, description, amount, due_at, status)
	VALUES ($1,$2,$3,$4,$5,'pending')
	RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, f.UserID, f.Type, f.Description, f.Amount, f.DueAt).
		Scan(&f.ID, &f.CreatedAt)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Fee, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+feeCols+`
	FROM fees
	WHERE user_id = $1
	ORDER BY due_at ASC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Fee
	for rows.Next() {
		var f model.Fee
		if err := rows.Scan(&f.ID, &f.UserID, &f.Type, &f.Description, &f.Amount,
			&f.PaidAmount, &f.DueAt, &f.Status, &f.PaidAt, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repo) Summary(ctx context.Context, userID int64) (*model.FeeSummary, error) {
	const q = `
	SELECT
		COALESCE(SUM(amount - paid_amount) FILTER (WHERE status <> 'paid'), 0),
		COALESCE(SUM(paid_amount), 0),
		COALESCE(SUM(amount - paid_amount) FILTER (WHERE status = 'overdue'), 0),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'overdue')
	FROM fees
	WHERE user_id = $1`
	var s model.FeeSummary
	err := r.db.QueryRowContext(ctx, q, userID).
		Scan(&s.TotalDue, &s.TotalPaid, &s.TotalOverdue, &s.PendingCount, &s.OverdueCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) GetFeeForUpdate(ctx context.Context, tx *sql.Tx, feeID int64) (*model.Fee, error) {
	var f model.Fee
	err := tx.QueryRowContext(ctx, `
	SELECT `+feeCols+`
	FROM fees
	WHERE id = $1
	FOR UPDATE`, feeID).
		Scan(&f.ID, &f.UserID, &f.Type, &f.Description, &f.Amount,
			&f.PaidAmount, &f.DueAt, &f.Status, &f.PaidAt, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repo) SettleFee(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error {
	const q = `
	UPDATE fees
	SET paid_amount = paid_amount + $2,
		status = CASE WHEN paid_amount + $2 >= amount THEN 'paid' ELSE status END,
		paid_at = CASE WHEN paid_amount + $2 >= amount THEN $3 ELSE paid_at END
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, feeID, amount, paidAt)
	return err
}

func (r *repo) UpsertLibraryFine(ctx context.Context, tx *sql.Tx, userID, borrowID int64, amount float64, dueAt time.Time) error {
	const q = `
	INSERT INTO fees (user_id, type, description, amount, due_at, status, borrow_id)
	VALUES ($1,'library_fine','Overdue book fine',$3,$4,'pending',$2)
	ON CONFLICT (borrow_id) WHERE borrow_id IS NOT NULL
	DO UPDATE SET amount = GREATEST(fees.amount, EXCLUDED.amount)`
	_, err := tx.ExecContext(ctx, q, userID, borrowID, amount, dueAt)
	return err
}

// Payments

const paymentCols = `id, fee_id, user_id, amount, method, status, transaction_id, gateway_invoice_id, payment_link, expires_at, paid_at, created_at`

func (r *repo) InsertPayment(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
	INSERT INTO payments (fee_id, user_id, amount, method, status, transaction_id, gateway_invoice_id, payment_link, expires_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q, p.FeeID, p.UserID, p.Amount, p.Method, p.Status,
		p.TransactionID, p.GatewayInvoiceID, p.PaymentLink, p.ExpiresAt).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *repo) FindPaymentByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx, `
	SELECT `+paymentCols+`
	FROM payments
	WHERE gateway_invoice_id = $1`, invoiceID).
		Scan(&p.ID, &p.FeeID, &p.UserID, &p.Amount, &p.Method, &p.Status, &p.TransactionID,
			&p.GatewayInvoiceID, &p.PaymentLink, &p.ExpiresAt, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) MarkPaymentPaid(ctx context.Context, tx *sql.Tx, paymentID int64, paidAt time.Time) error {
	const q = `
	UPDATE payments
	SET status = 'PAID', paid_at = $2
	WHERE id = $1
	AND status = 'PENDING'`
	res, err := tx.ExecContext(ctx, q, paymentID, paidAt)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) MarkPaymentExpired(ctx context.Context, invoiceID string) error {
	const q = `
	UPDATE payments
	SET status = 'EXPIRED'
	WHERE gateway_invoice_id = $1
	AND status = 'PENDING'`
	_, err := r.db.ExecContext(ctx, q, invoiceID)
	return err
}

func (r *repo) SweepOverdueFees(ctx context.Context, now time.Time) (int64, error) {
	const q = `
	UPDATE fees
	SET status = 'overdue'
	WHERE status = 'pending'
	AND due_at < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
