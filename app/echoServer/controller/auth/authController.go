// app/echoServer/controller/auth/authController.go
package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/jwtx"
	"campusportal/app/echoServer/respond"
	"campusportal/model"
	authsvc "campusportal/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new student account; email and username must be unique
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  respond.Body
// @Failure      400  {object}  respond.Body "validation or email/username already taken"
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailTaken):
			return respond.Err(c, http.StatusBadRequest, "email already registered")
		case errors.Is(err, authsvc.ErrUsernameTaken):
			return respond.Err(c, http.StatusBadRequest, "username already taken")
		case errors.Is(err, authsvc.ErrBadInput):
			return respond.Err(c, http.StatusBadRequest, "bad input")
		default:
			ct.Log.Error("register failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return respond.Err(c, http.StatusInternalServerError, "register failed")
		}
	}

	return respond.Created(c, "registered", echo.Map{"user": u, "token": token})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  respond.Body
// @Failure      401  {object}  respond.Body
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCreds):
			return respond.Err(c, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, authsvc.ErrBadInput):
			return respond.Err(c, http.StatusBadRequest, "bad input")
		default:
			ct.Log.Error("login failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return respond.Err(c, http.StatusInternalServerError, "login failed")
		}
	}

	return respond.OK(c, "login success", echo.Map{"user": u, "token": token})
}

// Me
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  respond.Body
// @Router       /v1/users/me [get]
func (ct *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return respond.Err(c, http.StatusUnauthorized, "unauthenticated")
	}
	u, err := ct.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("me failed", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", u)
}
