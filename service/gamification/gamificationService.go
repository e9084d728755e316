package gamificationsvc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"campusportal/model"
	gamificationrepo "campusportal/repository/gamification"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrBadgeNotFound  = errors.New("badge not found")
)

type LeaderboardRow = gamificationrepo.LeaderboardRow

const (
	leaderboardKey   = "gamification:leaderboard"
	leaderboardTTL   = time.Minute
	leaderboardLimit = 20
)

type Repo interface {
	InsertEvent(ctx context.Context, e *model.PointEvent) error
	TotalPoints(ctx context.Context, userID int64) (int64, error)
	ListEvents(ctx context.Context, userID int64, limit int64) ([]model.PointEvent, error)
	Leaderboard(ctx context.Context, limit int64) ([]LeaderboardRow, error)
	CreateBadge(ctx context.Context, b *model.Badge) error
	ListBadges(ctx context.Context) ([]model.Badge, error)
	ListUserBadges(ctx context.Context, userID int64) ([]model.Badge, error)
	AwardBadge(ctx context.Context, userID, badgeID int64) error
}

// Cache is the slice of Redis the leaderboard needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// PointsView is the /points payload: the ledger tail plus derived totals.
type PointsView struct {
	TotalPoints int64              `json:"total_points"`
	Level       int64              `json:"level"`
	Recent      []model.PointEvent `json:"recent"`
}

type Service interface {
	// Award appends one ledger event. The ledger is append-only; totals are
	// always recomputed from it.
	Award(ctx context.Context, userID, points int64, reason model.PointReason, refTable string, refID *int64) error

	MyPoints(ctx context.Context, userID int64) (*PointsView, error)
	Leaderboard(ctx context.Context) ([]LeaderboardRow, error)

	CreateBadge(ctx context.Context, code, name, description, icon string) (*model.Badge, error)
	ListBadges(ctx context.Context) ([]model.Badge, error)
	MyBadges(ctx context.Context, userID int64) ([]model.Badge, error)

	// AwardBadge is idempotent per (user, badge): replays are silent no-ops.
	AwardBadge(ctx context.Context, userID, badgeID int64) error
}

// ----- Service implementation -----

type service struct {
	r     Repo
	cache Cache
}

func New(r Repo, cache Cache) Service { return &service{r: r, cache: cache} }

func (s *service) Award(ctx context.Context, userID, points int64, reason model.PointReason, refTable string, refID *int64) error {
	if points == 0 {
		return nil
	}
	e := &model.PointEvent{
		UserID:     userID,
		Points:     points,
		Multiplier: 1,
		Reason:     reason,
		RefTable:   refTable,
		RefID:      refID,
	}
	if err := s.r.InsertEvent(ctx, e); err != nil {
		return err
	}
	// A stale leaderboard for up to the TTL is fine, a stale one after an
	// explicit award is confusing.
	_ = s.cache.Del(ctx, leaderboardKey)
	return nil
}

func (s *service) MyPoints(ctx context.Context, userID int64) (*PointsView, error) {
	total, err := s.r.TotalPoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.r.ListEvents(ctx, userID, 20)
	if err != nil {
		return nil, err
	}
	return &PointsView{
		TotalPoints: total,
		Level:       model.Level(total),
		Recent:      recent,
	}, nil
}

func (s *service) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	if b, err := s.cache.Get(ctx, leaderboardKey); err == nil && len(b) > 0 {
		var rows []LeaderboardRow
		if json.Unmarshal(b, &rows) == nil {
			return rows, nil
		}
	}

	rows, err := s.r.Leaderboard(ctx, leaderboardLimit)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rows); err == nil {
		_ = s.cache.Set(ctx, leaderboardKey, b, leaderboardTTL)
	}
	return rows, nil
}

func (s *service) CreateBadge(ctx context.Context, code, name, description, icon string) (*model.Badge, error) {
	if code == "" || name == "" {
		return nil, ErrInvalidPayload
	}
	b := &model.Badge{Code: code, Name: name, Description: description, Icon: icon}
	if err := s.r.CreateBadge(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListBadges(ctx context.Context) ([]model.Badge, error) {
	return s.r.ListBadges(ctx)
}

func (s *service) MyBadges(ctx context.Context, userID int64) ([]model.Badge, error) {
	return s.r.ListUserBadges(ctx, userID)
}

func (s *service) AwardBadge(ctx context.Context, userID, badgeID int64) error {
	err := s.r.AwardBadge(ctx, userID, badgeID)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			// Already awarded: idempotent by design of the unique index.
			return nil
		case pgerrcode.ForeignKeyViolation:
			return ErrBadgeNotFound
		}
	}
	return err
}
