// service/progress/progressService.go
package progresssvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusportal/model"
	progressrepo "campusportal/repository/progress"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrNoProgress     = errors.New("no reading progress for this book")
)

// Rewarder feeds the points ledger. Failures here never fail an update.
type Rewarder interface {
	Award(ctx context.Context, userID, points int64, reason model.PointReason, refTable string, refID *int64) error
}

type Service interface {
	Get(ctx context.Context, userID, bookID int64) (*model.ReadingProgress, error)

	// Update records the reader's position. Completing a book (reaching the
	// last page for the first time) awards points exactly once.
	Update(ctx context.Context, userID, bookID, currentPage, totalPages int64) (*model.ReadingProgress, error)

	// Rate requires an existing progress row and refreshes the book's
	// average rating in the same transaction.
	Rate(ctx context.Context, userID, bookID int64, rating int) error

	AddBookmark(ctx context.Context, userID, bookID, page int64, note string) (*model.Bookmark, error)
	ListBookmarks(ctx context.Context, userID, bookID int64) ([]model.Bookmark, error)
}

type service struct {
	db      *sql.DB
	r       progressrepo.Repo
	rewards Rewarder
	now     func() time.Time
}

func New(db *sql.DB, r progressrepo.Repo, rewards Rewarder) Service {
	return &service{db: db, r: r, rewards: rewards, now: time.Now}
}

func (s *service) Get(ctx context.Context, userID, bookID int64) (*model.ReadingProgress, error) {
	p, err := s.r.Get(ctx, userID, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProgress
	}
	return p, err
}

func (s *service) Update(ctx context.Context, userID, bookID, currentPage, totalPages int64) (*model.ReadingProgress, error) {
	if totalPages <= 0 || currentPage < 0 || currentPage > totalPages {
		return nil, ErrInvalidPayload
	}

	// The upsert flips completed at most once; read first so we know whether
	// this call is the flip.
	wasCompleted := false
	if prev, err := s.r.Get(ctx, userID, bookID); err == nil {
		wasCompleted = prev.Completed
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err := s.r.Upsert(ctx, userID, bookID, currentPage, totalPages, s.now()); err != nil {
		return nil, err
	}

	p, err := s.r.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if p.Completed && !wasCompleted {
		_ = s.rewards.Award(ctx, userID, 25, model.PointsBookCompleted, "reading_progress", &p.ID)
	}
	return p, nil
}

func (s *service) Rate(ctx context.Context, userID, bookID int64, rating int) (err error) {
	if rating < 1 || rating > 5 {
		return ErrInvalidPayload
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.r.SetRating(ctx, tx, userID, bookID, rating); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNoProgress
		}
		return err
	}
	if err = s.r.RefreshAvgRating(ctx, tx, bookID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) AddBookmark(ctx context.Context, userID, bookID, page int64, note string) (*model.Bookmark, error) {
	if page < 0 {
		return nil, ErrInvalidPayload
	}
	b := &model.Bookmark{UserID: userID, BookID: bookID, Page: page, Note: note}
	if err := s.r.AddBookmark(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListBookmarks(ctx context.Context, userID, bookID int64) ([]model.Bookmark, error) {
	return s.r.ListBookmarks(ctx, userID, bookID)
}
