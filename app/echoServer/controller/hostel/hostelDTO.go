package hostel

type CreateRoomReq struct {
	Block    string `json:"block" validate:"required,max=50"`
	Number   string `json:"number" validate:"required,max=20"`
	Capacity int64  `json:"capacity" validate:"required,gt=0"`
}

type UpdateRoomReq struct {
	Capacity    *int64  `json:"capacity" validate:"omitempty,gt=0"`
	Maintenance *string `json:"maintenance_status" validate:"omitempty,oneof=good needs_repair under_maintenance out_of_order"`
	Active      *bool   `json:"active"`
}

type AllocationReq struct {
	RoomID *int64 `json:"room_id" validate:"omitempty,gt=0"`
	Period string `json:"academic_period" validate:"required,max=30"`
}

type AllocationStatusReq struct {
	Status string  `json:"status" validate:"required,oneof=checked_in checked_out cancelled"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type ServiceRequestReq struct {
	RoomID      int64  `json:"room_id" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=maintenance cleaning room_change other"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Description string `json:"description" validate:"required,max=2000"`
}

type RequestStatusReq struct {
	Status     string `json:"status" validate:"required,oneof=acknowledged in_progress resolved cancelled"`
	AssigneeID *int64 `json:"assignee_id" validate:"omitempty,gt=0"`
}

type FeedbackReq struct {
	Feedback string `json:"feedback" validate:"required,max=2000"`
}
