package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	borrowrepo "campusportal/repository/borrow"
	"campusportal/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotAvailable    ErrCode = "NOT_AVAILABLE"
	ErrAlreadyBorrowed ErrCode = "ALREADY_BORROWED"
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrNotOwner        ErrCode = "NOT_OWNER"
	ErrNotActive       ErrCode = "NOT_ACTIVE"
	ErrNotFound        ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const (
	loanDays         = 14
	defaultRenewals  = 2
	fineGraceDueDays = 14 // fine fees come due two weeks after the return
)

// HistoryRow = repository shape
type HistoryRow = borrowrepo.HistoryRow

type Repo interface {
	HasOpenBorrow(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	InsertBorrow(ctx context.Context, tx *sql.Tx, userID, bookID int64, borrowedAt, dueAt time.Time, maxRenewals int) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, borrowID int64) (*model.BorrowRecord, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, borrowID int64, returnedAt time.Time, condition model.BookCondition, fine float64) error
	UpdateRenewal(ctx context.Context, tx *sql.Tx, borrowID int64, newDue time.Time, newCount int) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, borrowID int64, status model.BorrowStatus, fine float64) error
	Delete(ctx context.Context, borrowID int64) error
	ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context, limit, offset int64) ([]HistoryRow, int64, error)
	SweepOverdue(ctx context.Context, now time.Time, perDiem float64) (int64, error)
}

// Inventory is the slice of the book repository the lifecycle needs.
type Inventory interface {
	Exists(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	ClaimCopy(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	ReleaseCopy(ctx context.Context, tx *sql.Tx, bookID int64) error
	RetireCopy(ctx context.Context, tx *sql.Tx, bookID int64) error
}

// Fines lets overdue returns surface as payable fees.
type Fines interface {
	UpsertLibraryFine(ctx context.Context, tx *sql.Tx, userID, borrowID int64, amount float64, dueAt time.Time) error
}

// Rewarder feeds the points ledger. Failures here never fail a borrow.
type Rewarder interface {
	Award(ctx context.Context, userID, points int64, reason model.PointReason, refTable string, refID *int64) error
}

type Service interface {
	// Borrow claims a copy and opens a record with a 14-day due date.
	Borrow(ctx context.Context, userID, bookID int64) (*model.BorrowRecord, error)

	// Renew extends the due date; reports false when renewal is not permitted.
	Renew(ctx context.Context, userID, borrowID int64) (bool, error)

	// Return closes the record, restores the copy and finalizes the fine.
	Return(ctx context.Context, userID, borrowID int64, condition model.BookCondition) (*model.BorrowRecord, error)

	// MarkLost / MarkDamaged close a record without restocking the copy.
	MarkLost(ctx context.Context, borrowID int64) error
	MarkDamaged(ctx context.Context, borrowID int64) error

	Delete(ctx context.Context, borrowID int64) error

	MyHistory(ctx context.Context, userID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context, limit, offset int64) ([]HistoryRow, int64, error)

	// SweepOverdue persists the overdue status and accrued fines that reads
	// already derive on the fly. Meant to run on a schedule.
	SweepOverdue(ctx context.Context) (int64, error)
}

// ----- Service implementation -----

type service struct {
	db      *sql.DB
	r       Repo
	inv     Inventory
	fines   Fines
	rewards Rewarder
	perDiem float64
	now     func() time.Time
}

func New(db *sql.DB, r Repo, inv Inventory, fines Fines, rewards Rewarder, perDiem float64) Service {
	return &service{db: db, r: r, inv: inv, fines: fines, rewards: rewards, perDiem: perDiem, now: time.Now}
}

func (s *service) Borrow(ctx context.Context, userID, bookID int64) (rec *model.BorrowRecord, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exists, err := s.inv.Exists(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, makeErr(ErrBookNotFound)
	}

	open, err := s.r.HasOpenBorrow(ctx, tx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, makeErr(ErrAlreadyBorrowed)
	}

	// Conditional decrement: the last copy can only be claimed once.
	claimed, err := s.inv.ClaimCopy(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, makeErr(ErrNotAvailable)
	}

	now := s.now().UTC()
	due := now.AddDate(0, 0, loanDays)
	id, err := s.r.InsertBorrow(ctx, tx, userID, bookID, now, due, defaultRenewals)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	_ = s.rewards.Award(ctx, userID, 5, model.PointsBorrow, "borrow_records", &id)

	return &model.BorrowRecord{
		ID:          id,
		UserID:      userID,
		BookID:      bookID,
		BorrowedAt:  now,
		DueAt:       due,
		Status:      model.BorrowActive,
		MaxRenewals: defaultRenewals,
		Condition:   model.ConditionGood,
	}, nil
}

func (s *service) Renew(ctx context.Context, userID, borrowID int64) (renewed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err := s.r.GetForUpdate(ctx, tx, borrowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, makeErr(ErrNotFound)
		}
		return false, err
	}
	if rec.UserID != userID {
		return false, makeErr(ErrNotOwner)
	}

	now := s.now().UTC()
	fine := Fine(rec.FineAmount, rec.DueAt, rec.ReturnedAt, now, s.perDiem)
	if EffectiveStatus(rec.Status, rec.DueAt, now) != model.BorrowActive ||
		rec.RenewalCount >= rec.MaxRenewals ||
		fine > 0 {
		// Not an error: renewal is simply not permitted in this state.
		return false, tx.Commit()
	}

	if err = s.r.UpdateRenewal(ctx, tx, borrowID, rec.DueAt.AddDate(0, 0, loanDays), rec.RenewalCount+1); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (s *service) Return(ctx context.Context, userID, borrowID int64, condition model.BookCondition) (rec *model.BorrowRecord, err error) {
	if condition == "" {
		condition = model.ConditionGood
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err = s.r.GetForUpdate(ctx, tx, borrowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if rec.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	status := rec.Status
	if status != model.BorrowActive && status != model.BorrowOverdue {
		return nil, makeErr(ErrNotActive)
	}

	now := s.now().UTC()
	fine := Fine(rec.FineAmount, rec.DueAt, &now, now, s.perDiem)

	if err = s.r.MarkReturned(ctx, tx, borrowID, now, condition, fine); err != nil {
		return nil, err
	}
	if err = s.inv.ReleaseCopy(ctx, tx, rec.BookID); err != nil {
		return nil, err
	}
	if fine > 0 {
		if err = s.fines.UpsertLibraryFine(ctx, tx, userID, borrowID, fine, now.AddDate(0, 0, fineGraceDueDays)); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if fine == 0 {
		_ = s.rewards.Award(ctx, userID, 10, model.PointsReturnOnTime, "borrow_records", &borrowID)
	}

	rec.Status = model.BorrowReturned
	rec.ReturnedAt = &now
	rec.Condition = condition
	rec.FineAmount = fine
	return rec, nil
}

func (s *service) MarkLost(ctx context.Context, borrowID int64) error {
	return s.closeWithoutRestock(ctx, borrowID, model.BorrowLost)
}

func (s *service) MarkDamaged(ctx context.Context, borrowID int64) error {
	return s.closeWithoutRestock(ctx, borrowID, model.BorrowDamaged)
}

func (s *service) closeWithoutRestock(ctx context.Context, borrowID int64, status model.BorrowStatus) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err := s.r.GetForUpdate(ctx, tx, borrowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if rec.Status != model.BorrowActive && rec.Status != model.BorrowOverdue {
		return makeErr(ErrNotActive)
	}

	now := s.now().UTC()
	fine := Fine(rec.FineAmount, rec.DueAt, nil, now, s.perDiem)
	if err = s.r.UpdateStatus(ctx, tx, borrowID, status, fine); err != nil {
		return err
	}
	// The copy never comes back to the shelf.
	if err = s.inv.RetireCopy(ctx, tx, rec.BookID); err != nil {
		return err
	}
	if fine > 0 {
		if err = s.fines.UpsertLibraryFine(ctx, tx, rec.UserID, borrowID, fine, now.AddDate(0, 0, fineGraceDueDays)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *service) Delete(ctx context.Context, borrowID int64) error {
	err := s.r.Delete(ctx, borrowID)
	if errors.Is(err, sql.ErrNoRows) {
		return makeErr(ErrNotFound)
	}
	return err
}

func (s *service) MyHistory(ctx context.Context, userID int64) ([]HistoryRow, error) {
	rows, err := s.r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.decorate(rows)
	return rows, nil
}

func (s *service) ListAll(ctx context.Context, limit, offset int64) ([]HistoryRow, int64, error) {
	rows, total, err := s.r.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	s.decorate(rows)
	return rows, total, err
}

func (s *service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.r.SweepOverdue(ctx, s.now().UTC(), s.perDiem)
}

// decorate recomputes status and fine at read time so listings never show a
// stale 'borrowed' for a record that is past due.
func (s *service) decorate(rows []HistoryRow) {
	now := s.now().UTC()
	for i := range rows {
		rows[i].Status = EffectiveStatus(rows[i].Status, rows[i].DueAt, now)
		if rows[i].Status == model.BorrowOverdue {
			rows[i].FineAmount = Fine(rows[i].FineAmount, rows[i].DueAt, rows[i].ReturnedAt, now, s.perDiem)
		}
	}
}
