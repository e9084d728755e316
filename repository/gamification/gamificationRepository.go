// repository/gamification/repo.go
package gamificationrepo

import (
	"context"
	"database/sql"

	"campusportal/model"
)

type LeaderboardRow struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	TotalPoints int64  `json:"total_points"`
	Level       int64  `json:"level"`
}

type Repo interface {
	InsertEvent(ctx context.Context, e *model.PointEvent) error
	TotalPoints(ctx context.Context, userID int64) (int64, error)
	ListEvents(ctx context.Context, userID int64, limit int64) ([]model.PointEvent, error)
	Leaderboard(ctx context.Context, limit int64) ([]LeaderboardRow, error)

	CreateBadge(ctx context.Context, b *model.Badge) error
	ListBadges(ctx context.Context) ([]model.Badge, error)
	ListUserBadges(ctx context.Context, userID int64) ([]model.Badge, error)
	// AwardBadge inserts the (user,badge) pair; a unique index makes replays fail
	// with a unique violation the service treats as a no-op.
	AwardBadge(ctx context.Context, userID, badgeID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) InsertEvent(ctx context.Context, e *model.PointEvent) error {
	const q = `
	INSERT INTO point_events (user_id, points, multiplier, reason, ref_table, ref_id)
	VALUES ($1,$2,$3,$4,$5,$6)
	RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, e.UserID, e.Points, e.Multiplier, e.Reason, e.RefTable, e.RefID).
		Scan(&e.ID, &e.CreatedAt)
}

func (r *repo) TotalPoints(ctx context.Context, userID int64) (int64, error) {
	const q = `
	SELECT COALESCE(SUM(FLOOR(points * multiplier)), 0)::BIGINT
	FROM point_events
	WHERE user_id = $1`
	var total int64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&total)
	return total, err
}

func (r *repo) ListEvents(ctx context.Context, userID int64, limit int64) ([]model.PointEvent, error) {
	const q = `
	SELECT id, user_id, points, multiplier, reason, ref_table, ref_id, created_at
	FROM point_events
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PointEvent
	for rows.Next() {
		var e model.PointEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Points, &e.Multiplier, &e.Reason,
			&e.RefTable, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) Leaderboard(ctx context.Context, limit int64) ([]LeaderboardRow, error) {
	const q = `
	SELECT
		u.id,
		u.username,
		COALESCE(SUM(FLOOR(pe.points * pe.multiplier)), 0)::BIGINT AS total_points
	FROM users u
	JOIN point_events pe ON pe.user_id = u.id
	GROUP BY u.id, u.username
	ORDER BY total_points DESC, u.id ASC
	LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var l LeaderboardRow
		if err := rows.Scan(&l.UserID, &l.Username, &l.TotalPoints); err != nil {
			return nil, err
		}
		l.Level = model.Level(l.TotalPoints)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) CreateBadge(ctx context.Context, b *model.Badge) error {
	const q = `
	INSERT INTO badges (code, name, description, icon)
	VALUES ($1,$2,$3,$4)
	RETURNING id`
	return r.db.QueryRowContext(ctx, q, b.Code, b.Name, b.Description, b.Icon).Scan(&b.ID)
}

func (r *repo) ListBadges(ctx context.Context) ([]model.Badge, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, description, icon FROM badges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBadges(rows)
}

func (r *repo) ListUserBadges(ctx context.Context, userID int64) ([]model.Badge, error) {
	const q = `
	SELECT b.id, b.code, b.name, b.description, b.icon
	FROM badges b
	JOIN user_badges ub ON ub.badge_id = b.id
	WHERE ub.user_id = $1
	ORDER BY ub.awarded_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBadges(rows)
}

func collectBadges(rows *sql.Rows) ([]model.Badge, error) {
	var out []model.Badge
	for rows.Next() {
		var b model.Badge
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.Description, &b.Icon); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) AwardBadge(ctx context.Context, userID, badgeID int64) error {
	const q = `
	INSERT INTO user_badges (user_id, badge_id)
	VALUES ($1,$2)`
	_, err := r.db.ExecContext(ctx, q, userID, badgeID)
	return err
}
