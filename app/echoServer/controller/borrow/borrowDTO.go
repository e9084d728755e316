package borrow

type ReturnReq struct {
	Condition string `json:"condition" validate:"omitempty,oneof=good fair poor damaged"`
}
