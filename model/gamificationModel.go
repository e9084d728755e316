// model/gamification.go
package model

import "time"

type PointReason string

const (
	PointsBorrow        PointReason = "BOOK_BORROWED"
	PointsReturnOnTime  PointReason = "RETURNED_ON_TIME"
	PointsBookCompleted PointReason = "BOOK_COMPLETED"
	PointsFeePaidOnTime PointReason = "FEE_PAID_ON_TIME"
	PointsAdjustment    PointReason = "ADJUSTMENT"
)

// PointEvent is one row of the append-only points ledger.
type PointEvent struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Points     int64       `json:"points"`
	Multiplier float64     `json:"multiplier"`
	Reason     PointReason `json:"reason"`
	RefTable   string      `json:"ref_table,omitempty"`
	RefID      *int64      `json:"ref_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Badge struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

type UserBadge struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BadgeID   int64     `json:"badge_id"`
	AwardedAt time.Time `json:"awarded_at"`
}

// Level derives a user level from total points: 100 points per level.
func Level(totalPoints int64) int64 {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints/100 + 1
}
