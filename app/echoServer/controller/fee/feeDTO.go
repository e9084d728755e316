package fee

import "time"

type CreateFeeReq struct {
	UserID      int64     `json:"user_id" validate:"required,gt=0"`
	Type        string    `json:"type" validate:"required,oneof=tuition hostel library_fine exam other"`
	Description string    `json:"description" validate:"max=500"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	DueAt       time.Time `json:"due_at" validate:"required"`
}

type PayReq struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Method     string  `json:"method" validate:"required,oneof=gateway cash card transfer"`
	PayerEmail string  `json:"payer_email" validate:"omitempty,email"`
}
