// model/book.go
package model

import "time"

type Book struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Category        string  `json:"category"`
	ISBN            string  `json:"isbn"`
	TotalCopies     int64   `json:"total_copies"`
	AvailableCopies int64   `json:"available_copies"`
	AvgRating       float64 `json:"avg_rating"`
}

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "borrowed"
	BorrowReturned BorrowStatus = "returned"
	BorrowOverdue  BorrowStatus = "overdue"
	BorrowLost     BorrowStatus = "lost"
	BorrowDamaged  BorrowStatus = "damaged"
)

type BookCondition string

const (
	ConditionGood    BookCondition = "good"
	ConditionFair    BookCondition = "fair"
	ConditionPoor    BookCondition = "poor"
	ConditionDamaged BookCondition = "damaged"
)

type BorrowRecord struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	BookID       int64         `json:"book_id"`
	BorrowedAt   time.Time     `json:"borrowed_at"`
	DueAt        time.Time     `json:"due_at"`
	ReturnedAt   *time.Time    `json:"returned_at,omitempty"`
	Status       BorrowStatus  `json:"status"`
	RenewalCount int           `json:"renewal_count"`
	MaxRenewals  int           `json:"max_renewals"`
	FineAmount   float64       `json:"fine_amount"`
	Condition    BookCondition `json:"condition"`
}
