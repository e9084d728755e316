package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"campusportal/model"
	authsvc "campusportal/service/auth"
)

type svcStub struct {
	authsvc.Service
	registerFn func(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
}

func (s svcStub) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	return s.registerFn(ctx, req)
}

func TestRegister_DuplicateIs400(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		msg  string
	}{
		{"email taken", authsvc.ErrEmailTaken, "email already registered"},
		{"username taken", authsvc.ErrUsernameTaken, "username already taken"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ct := &Controller{
				Svc: svcStub{registerFn: func(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
					return nil, "", tc.err
				}},
				V:   validator.New(),
				Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
			}

			body := `{"first_name":"Ana","last_name":"Putri","email":"ana@campus.test","username":"ana","password":"secret1"}`
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/v1/users/register", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			require.NoError(t, ct.Register(e.NewContext(req, rec)))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), tc.msg)
		})
	}
}
