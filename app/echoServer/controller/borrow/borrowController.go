// app/echoServer/controller/borrow/borrowController.go
package borrow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/respond"
	"campusportal/model"
	borrowsvc "campusportal/service/borrow"
)

type Controller struct {
	Svc borrowsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// @Summary  Borrow a book
// @Tags     library
// @Security BearerAuth
// @Success  201 {object} respond.Body
// @Router   /v1/library/books/{id}/borrow [post]
func (ct *Controller) Borrow(c echo.Context) error {
	bookID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	uid, _ := c.Get("user_id").(int64)

	rec, err := ct.Svc.Borrow(c.Request().Context(), uid, bookID)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrNotAvailable:
			return respond.Err(c, http.StatusBadRequest, "no copies available")
		case borrowsvc.ErrAlreadyBorrowed:
			return respond.Err(c, http.StatusBadRequest, "book already borrowed")
		case borrowsvc.ErrBookNotFound:
			return respond.Err(c, http.StatusNotFound, "book not found")
		default:
			ct.Log.Error("borrow", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.Created(c, "borrowed", rec)
}

// @Summary  Renew a borrow
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/borrows/{id}/renew [post]
func (ct *Controller) Renew(c echo.Context) error {
	borrowID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	uid, _ := c.Get("user_id").(int64)

	renewed, err := ct.Svc.Renew(c.Request().Context(), uid, borrowID)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "borrow not found")
		case borrowsvc.ErrNotOwner:
			return respond.Err(c, http.StatusForbidden, "forbidden")
		default:
			ct.Log.Error("renew", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	if !renewed {
		return respond.Err(c, http.StatusBadRequest, "renewal not permitted")
	}
	return respond.OK(c, "renewed", nil)
}

// @Summary  Return a book
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/borrows/{id}/return [post]
func (ct *Controller) Return(c echo.Context) error {
	borrowID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	cond := model.BookCondition(req.Condition)
	if cond == "" {
		cond = model.ConditionGood
	}
	uid, _ := c.Get("user_id").(int64)

	rec, err := ct.Svc.Return(c.Request().Context(), uid, borrowID, cond)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "borrow not found")
		case borrowsvc.ErrNotOwner:
			return respond.Err(c, http.StatusForbidden, "forbidden")
		case borrowsvc.ErrNotActive:
			return respond.Err(c, http.StatusBadRequest, "borrow not active")
		default:
			ct.Log.Error("return", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.OK(c, "returned", rec)
}

// @Summary  Mark a borrow lost
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/borrows/{id}/lost [post]
func (ct *Controller) MarkLost(c echo.Context) error {
	return ct.closeAs(c, ct.Svc.MarkLost, "marked lost")
}

// @Summary  Mark a borrow damaged
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/borrows/{id}/damaged [post]
func (ct *Controller) MarkDamaged(c echo.Context) error {
	return ct.closeAs(c, ct.Svc.MarkDamaged, "marked damaged")
}

func (ct *Controller) closeAs(c echo.Context, fn func(ctx context.Context, borrowID int64) error, msg string) error {
	borrowID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	if err := fn(c.Request().Context(), borrowID); err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "borrow not found")
		case borrowsvc.ErrNotActive:
			return respond.Err(c, http.StatusBadRequest, "borrow not active")
		default:
			ct.Log.Error("borrow close", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.OK(c, msg, nil)
}

// @Summary  My borrow history
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/history [get]
func (ct *Controller) MyHistory(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := ct.Svc.MyHistory(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("history", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", rows)
}

// @Summary  All borrows (paginated)
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/borrows [get]
func (ct *Controller) ListAll(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, total, err := ct.Svc.ListAll(c.Request().Context(), limit, (page-1)*limit)
	if err != nil {
		ct.Log.Error("borrow list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.Page(c, "ok", rows, page, limit, total)
}

// @Summary  Delete a borrow record
// @Tags     library
// @Security BearerAuth
// @Router   /v1/library/borrows/{id} [delete]
func (ct *Controller) Delete(c echo.Context) error {
	borrowID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	if err := ct.Svc.Delete(c.Request().Context(), borrowID); err != nil {
		if borrowsvc.Code(err) == borrowsvc.ErrNotFound {
			return respond.Err(c, http.StatusNotFound, "borrow not found")
		}
		ct.Log.Error("borrow delete", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "deleted", nil)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
