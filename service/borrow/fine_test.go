package borrowsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusportal/model"
)

var due = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestDaysOverdue(t *testing.T) {
	require.Equal(t, int64(0), DaysOverdue(due, due))
	require.Equal(t, int64(0), DaysOverdue(due, due.Add(-time.Hour)))

	// any time past due counts as a whole day
	require.Equal(t, int64(1), DaysOverdue(due, due.Add(time.Minute)))
	require.Equal(t, int64(1), DaysOverdue(due, due.Add(24*time.Hour)))
	require.Equal(t, int64(2), DaysOverdue(due, due.Add(25*time.Hour)))
	require.Equal(t, int64(3), DaysOverdue(due, due.Add(72*time.Hour)))
}

func TestFine_PerDiem(t *testing.T) {
	// 3 days late at 5/day = 15
	now := due.Add(72 * time.Hour)
	require.Equal(t, 15.0, Fine(0, due, nil, now, 5))
}

func TestFine_UsesReturnDate(t *testing.T) {
	returned := due.Add(24 * time.Hour)
	now := due.Add(240 * time.Hour) // clock long past the return

	require.Equal(t, 5.0, Fine(0, due, &returned, now, 5))
}

func TestFine_Monotonic(t *testing.T) {
	// a stored fine never shrinks, even if the computed one would
	require.Equal(t, 40.0, Fine(40, due, nil, due.Add(24*time.Hour), 5))
}

func TestFine_NotOverdue(t *testing.T) {
	require.Equal(t, 0.0, Fine(0, due, nil, due.Add(-time.Hour), 5))
}

func TestEffectiveStatus(t *testing.T) {
	require.Equal(t, model.BorrowActive, EffectiveStatus(model.BorrowActive, due, due))
	require.Equal(t, model.BorrowOverdue, EffectiveStatus(model.BorrowActive, due, due.Add(time.Second)))

	// closed records are never re-derived
	require.Equal(t, model.BorrowReturned, EffectiveStatus(model.BorrowReturned, due, due.Add(time.Hour)))
	require.Equal(t, model.BorrowLost, EffectiveStatus(model.BorrowLost, due, due.Add(time.Hour)))
}
