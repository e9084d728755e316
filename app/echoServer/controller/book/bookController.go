// app/echoServer/controller/book/bookController.go
package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/respond"
	booksvc "campusportal/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// @Summary  Create book
// @Tags     library
// @Security BearerAuth
// @Param    payload body CreateBookReq true "Book payload"
// @Success  201 {object} respond.Body
// @Router   /v1/library/books [post]
func (ct *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	id, err := ct.Svc.Create(c.Request().Context(), req.Title, req.Author, req.Category, req.ISBN, req.Copies)
	if err != nil {
		if errors.Is(err, booksvc.ErrInvalidPayload) {
			return respond.Err(c, http.StatusBadRequest, "invalid payload")
		}
		ct.Log.Error("book create", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.Created(c, "book created", echo.Map{"id": id})
}

// @Summary  Add copies
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id}/copies [post]
func (ct *Controller) AddCopies(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req AddCopiesReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	if err := ct.Svc.AddCopies(c.Request().Context(), id, req.Copies); err != nil {
		if errors.Is(err, booksvc.ErrNotFound) {
			return respond.Err(c, http.StatusNotFound, "book not found")
		}
		ct.Log.Error("add copies", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "copies added", nil)
}

// @Summary  List books
// @Tags     library
// @Security BearerAuth
// @Param    search query string false "title search"
// @Router   /v1/library/books [get]
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		ct.Log.Error("book list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", rows)
}

// @Summary  Book detail
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id} [get]
func (ct *Controller) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	b, err := ct.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booksvc.ErrNotFound) {
			return respond.Err(c, http.StatusNotFound, "book not found")
		}
		ct.Log.Error("book detail", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", b)
}

// @Summary  Delete book
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id} [delete]
func (ct *Controller) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	if err := ct.Svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, booksvc.ErrNotFound) {
			return respond.Err(c, http.StatusNotFound, "book not found")
		}
		ct.Log.Error("book delete", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "book deleted", nil)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
