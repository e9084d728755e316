// app/echoServer/controller/fee/feeController.go
package fee

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/respond"
	"campusportal/model"
	gatewayrepo "campusportal/repository/gateway"
	feesvc "campusportal/service/fee"
)

type Controller struct {
	Svc feesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// @Summary  Create fee
// @Tags     fees
// @Security BearerAuth
// @Router   /v1/fees [post]
func (ct *Controller) Create(c echo.Context) error {
	var req CreateFeeReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	f, err := ct.Svc.Create(c.Request().Context(), req.UserID, model.FeeType(req.Type), req.Description, req.Amount, req.DueAt)
	if err != nil {
		if feesvc.Code(err) == feesvc.ErrAmountInvalid {
			return respond.Err(c, http.StatusBadRequest, "invalid amount")
		}
		ct.Log.Error("fee create", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.Created(c, "fee created", f)
}

// @Summary  My fees
// @Tags     fees
// @Security BearerAuth
// @Router   /v1/fees [get]
func (ct *Controller) MyFees(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := ct.Svc.MyFees(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("fee list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", rows)
}

// @Summary  Fee summary
// @Tags     fees
// @Security BearerAuth
// @Router   /v1/fees/summary [get]
func (ct *Controller) Summary(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	sum, err := ct.Svc.Summary(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("fee summary", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", sum)
}

// @Summary  Pay a fee
// @Tags     fees
// @Security BearerAuth
// @Router   /v1/fees/{id}/pay [post]
func (ct *Controller) Pay(c echo.Context) error {
	feeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || feeID <= 0 {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req PayReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := ct.Svc.Pay(c.Request().Context(), uid, feeID, req.Amount, req.Method, req.PayerEmail)
	if err != nil {
		switch feesvc.Code(err) {
		case feesvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "fee not found")
		case feesvc.ErrNotOwner:
			return respond.Err(c, http.StatusForbidden, "forbidden")
		case feesvc.ErrAlreadyPaid:
			return respond.Err(c, http.StatusBadRequest, "fee already settled")
		case feesvc.ErrAmountInvalid:
			return respond.Err(c, http.StatusBadRequest, "amount exceeds outstanding balance")
		default:
			ct.Log.Error("fee pay", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.Created(c, "payment created", out)
}

// @Summary  Payment gateway webhook
// @Tags     fees
// @Router   /v1/payments/webhook [post]
func (ct *Controller) Webhook(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "unreadable body")
	}
	token := c.Request().Header.Get("x-callback-token")

	if err := ct.Svc.HandleGatewayWebhook(c.Request().Context(), token, raw); err != nil {
		if errors.Is(err, gatewayrepo.ErrBadCallbackToken) {
			return respond.Err(c, http.StatusUnauthorized, "invalid callback token")
		}
		ct.Log.Error("webhook", "err", err)
		return respond.Err(c, http.StatusBadRequest, "webhook rejected")
	}
	return respond.OK(c, "processed", nil)
}
