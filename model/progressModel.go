// model/progress.go
package model

import "time"

type ReadingProgress struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	BookID      int64      `json:"book_id"`
	CurrentPage int64      `json:"current_page"`
	TotalPages  int64      `json:"total_pages"`
	Completed   bool       `json:"completed"`
	Rating      *int       `json:"rating,omitempty"` // 1..5
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Derived at read time.
	ProgressPercentage float64 `json:"progress_percentage"`
}

type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	Page      int64     `json:"page"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Percentage computes read progress, clamped to [0,100].
func (p *ReadingProgress) Percentage() float64 {
	if p.TotalPages <= 0 {
		return 0
	}
	pct := float64(p.CurrentPage) / float64(p.TotalPages) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
