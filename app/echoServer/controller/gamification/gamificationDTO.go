package gamification

type CreateBadgeReq struct {
	Code        string `json:"code" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Icon        string `json:"icon" validate:"max=100"`
}

type AwardBadgeReq struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
