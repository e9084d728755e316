package book

type CreateBookReq struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	Author   string `json:"author" validate:"required,min=1,max=255"`
	Category string `json:"category" validate:"max=100"`
	ISBN     string `json:"isbn" validate:"max=20"`
	Copies   int64  `json:"copies" validate:"required,gt=0"`
}

type AddCopiesReq struct {
	Copies int64 `json:"copies" validate:"required,gt=0"`
}
