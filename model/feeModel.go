// model/fee.go
package model

import "time"

type FeeType string

const (
	FeeTuition     FeeType = "tuition"
	FeeHostel      FeeType = "hostel"
	FeeLibraryFine FeeType = "library_fine"
	FeeExam        FeeType = "exam"
	FeeOther       FeeType = "other"
)

type FeeStatus string

const (
	FeePending FeeStatus = "pending"
	FeePaid    FeeStatus = "paid"
	FeeOverdue FeeStatus = "overdue"
)

type Fee struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Type        FeeType    `json:"type"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	PaidAmount  float64    `json:"paid_amount"`
	DueAt       time.Time  `json:"due_at"`
	Status      FeeStatus  `json:"status"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentExpired PaymentStatus = "EXPIRED"
	PaymentFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	ID               int64         `json:"id"`
	FeeID            int64         `json:"fee_id"`
	UserID           int64         `json:"user_id"`
	Amount           float64       `json:"amount"`
	Method           string        `json:"method"` // gateway | cash | bank_transfer
	Status           PaymentStatus `json:"status"`
	TransactionID    string        `json:"transaction_id"`
	GatewayInvoiceID *string       `json:"gateway_invoice_id,omitempty"`
	PaymentLink      *string       `json:"payment_link,omitempty"`
	ExpiresAt        *time.Time    `json:"expires_at,omitempty"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// FeeSummary aggregates a user's fees by status.
type FeeSummary struct {
	TotalDue     float64 `json:"total_due"`
	TotalPaid    float64 `json:"total_paid"`
	TotalOverdue float64 `json:"total_overdue"`
	PendingCount int64   `json:"pending_count"`
	OverdueCount int64   `json:"overdue_count"`
}
