package progress

type UpdateProgressReq struct {
	CurrentPage int64 `json:"current_page" validate:"min=0"`
	TotalPages  int64 `json:"total_pages" validate:"required,gt=0"`
}

type RateReq struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type BookmarkReq struct {
	Page int64  `json:"page" validate:"min=0"`
	Note string `json:"note" validate:"max=500"`
}
