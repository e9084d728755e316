// app/echoServer/controller/gamification/gamificationController.go
package gamification

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/respond"
	gamificationsvc "campusportal/service/gamification"
)

type Controller struct {
	Svc gamificationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// @Summary  My points and level
// @Tags     gamification
// @Security BearerAuth
// @Router   /v1/gamification/points [get]
func (ct *Controller) MyPoints(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	view, err := ct.Svc.MyPoints(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("points", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", view)
}

// @Summary  Leaderboard
// @Tags     gamification
// @Security BearerAuth
// @Router   /v1/gamification/leaderboard [get]
func (ct *Controller) Leaderboard(c echo.Context) error {
	rows, err := ct.Svc.Leaderboard(c.Request().Context())
	if err != nil {
		ct.Log.Error("leaderboard", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", rows)
}

// @Summary  List badges (catalog plus own)
// @Tags     gamification
// @Security BearerAuth
// @Router   /v1/gamification/badges [get]
func (ct *Controller) ListBadges(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)

	all, err := ct.Svc.ListBadges(c.Request().Context())
	if err != nil {
		ct.Log.Error("badge list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	mine, err := ct.Svc.MyBadges(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("badge list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", echo.Map{"badges": all, "earned": mine})
}

// @Summary  Create badge
// @Tags     gamification
// @Security BearerAuth
// @Router   /v1/gamification/badges [post]
func (ct *Controller) CreateBadge(c echo.Context) error {
	var req CreateBadgeReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	b, err := ct.Svc.CreateBadge(c.Request().Context(), req.Code, req.Name, req.Description, req.Icon)
	if err != nil {
		if errors.Is(err, gamificationsvc.ErrInvalidPayload) {
			return respond.Err(c, http.StatusBadRequest, "invalid badge")
		}
		ct.Log.Error("badge create", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.Created(c, "badge created", b)
}

// @Summary  Award badge to a user
// @Tags     gamification
// @Security BearerAuth
// @Router   /v1/gamification/badges/{id}/award [post]
func (ct *Controller) AwardBadge(c echo.Context) error {
	badgeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || badgeID <= 0 {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req AwardBadgeReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	if err := ct.Svc.AwardBadge(c.Request().Context(), req.UserID, badgeID); err != nil {
		if errors.Is(err, gamificationsvc.ErrBadgeNotFound) {
			return respond.Err(c, http.StatusNotFound, "badge or user not found")
		}
		ct.Log.Error("badge award", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "badge awarded", nil)
}
