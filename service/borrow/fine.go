package borrowsvc

import (
	"math"
	"time"

	"campusportal/model"
)

// DaysOverdue counts whole days past the due date, rounded up.
// Zero when asOf is on or before dueAt.
func DaysOverdue(dueAt, asOf time.Time) int64 {
	if !asOf.After(dueAt) {
		return 0
	}
	return int64(math.Ceil(asOf.Sub(dueAt).Hours() / 24))
}

// Fine computes the per-diem fine for a record. Overdue days run up to the
// return date when the book came back, otherwise up to now. The stored fine
// is a floor so the amount never decreases.
func Fine(existing float64, dueAt time.Time, returnedAt *time.Time, now time.Time, perDiem float64) float64 {
	asOf := now
	if returnedAt != nil {
		asOf = *returnedAt
	}
	fine := float64(DaysOverdue(dueAt, asOf)) * perDiem
	return math.Max(existing, fine)
}

// EffectiveStatus derives the real status of a record from persisted state
// and the clock, so read paths never trust a stale 'borrowed'.
func EffectiveStatus(status model.BorrowStatus, dueAt, now time.Time) model.BorrowStatus {
	if status == model.BorrowActive && dueAt.Before(now) {
		return model.BorrowOverdue
	}
	return status
}
