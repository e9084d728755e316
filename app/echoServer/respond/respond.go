// app/echoServer/respond/respond.go
package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Body is the envelope every endpoint answers with.
type Body struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Current int64 `json:"current"`
	Pages   int64 `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int64 `json:"limit"`
}

func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Body{Success: true, Message: message, Data: data})
}

func Page(c echo.Context, message string, data interface{}, current, limit, total int64) error {
	if limit <= 0 {
		limit = 10
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return c.JSON(http.StatusOK, Body{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &Pagination{Current: current, Pages: pages, Total: total, Limit: limit},
	})
}

func Err(c echo.Context, status int, message string) error {
	return c.JSON(status, Body{Success: false, Message: message, Error: message})
}

// ValidationErr carries the validator detail alongside the generic message.
func ValidationErr(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, Body{Success: false, Message: "validation error", Error: detail})
}
