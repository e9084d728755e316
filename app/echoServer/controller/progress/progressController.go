// app/echoServer/controller/progress/progressController.go
package progress

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/respond"
	progresssvc "campusportal/service/progress"
)

type Controller struct {
	Svc progresssvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// @Summary  Reading progress for a book
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id}/progress [get]
func (ct *Controller) Get(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	uid, _ := c.Get("user_id").(int64)

	p, err := ct.Svc.Get(c.Request().Context(), uid, bookID)
	if err != nil {
		if errors.Is(err, progresssvc.ErrNoProgress) {
			return respond.Err(c, http.StatusNotFound, "no reading progress")
		}
		ct.Log.Error("progress get", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", p)
}

// @Summary  Update reading progress
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id}/progress [put]
func (ct *Controller) Update(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req UpdateProgressReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	uid, _ := c.Get("user_id").(int64)

	p, err := ct.Svc.Update(c.Request().Context(), uid, bookID, req.CurrentPage, req.TotalPages)
	if err != nil {
		if errors.Is(err, progresssvc.ErrInvalidPayload) {
			return respond.Err(c, http.StatusBadRequest, "invalid progress")
		}
		ct.Log.Error("progress update", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "progress updated", p)
}

// @Summary  Rate a book
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id}/rating [post]
func (ct *Controller) Rate(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req RateReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	uid, _ := c.Get("user_id").(int64)

	if err := ct.Svc.Rate(c.Request().Context(), uid, bookID, req.Rating); err != nil {
		switch {
		case errors.Is(err, progresssvc.ErrNoProgress):
			return respond.Err(c, http.StatusBadRequest, "read the book before rating it")
		case errors.Is(err, progresssvc.ErrInvalidPayload):
			return respond.Err(c, http.StatusBadRequest, "rating must be 1-5")
		default:
			ct.Log.Error("rate", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.OK(c, "rated", nil)
}

// @Summary  Add bookmark
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id}/progress/bookmarks [post]
func (ct *Controller) AddBookmark(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req BookmarkReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := ct.Svc.AddBookmark(c.Request().Context(), uid, bookID, req.Page, req.Note)
	if err != nil {
		if errors.Is(err, progresssvc.ErrInvalidPayload) {
			return respond.Err(c, http.StatusBadRequest, "invalid bookmark")
		}
		ct.Log.Error("bookmark add", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.Created(c, "bookmark added", b)
}

// @Summary  List bookmarks
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/books/{id}/progress/bookmarks [get]
func (ct *Controller) ListBookmarks(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	uid, _ := c.Get("user_id").(int64)

	rows, err := ct.Svc.ListBookmarks(c.Request().Context(), uid, bookID)
	if err != nil {
		ct.Log.Error("bookmark list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", rows)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
