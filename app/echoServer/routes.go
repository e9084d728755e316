// app/echoServer/routes.go
package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/controller/auth"
	"campusportal/app/echoServer/controller/book"
	"campusportal/app/echoServer/controller/borrow"
	"campusportal/app/echoServer/controller/fee"
	"campusportal/app/echoServer/controller/gamification"
	"campusportal/app/echoServer/controller/hostel"
	"campusportal/app/echoServer/controller/progress"
	"campusportal/model"
)

type C struct {
	Auth         *auth.Controller
	Book         *book.Controller
	Borrow       *borrow.Controller
	Progress     *progress.Controller
	Hostel       *hostel.Controller
	Fee          *fee.Controller
	Gamification *gamification.Controller
	JWTSecret    string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.POST("/payments/webhook", c.Fee.Webhook)

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	}))
	// user_id + role extraction from verified claims
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tok, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			if r, ok := claims["role"].(string); ok {
				ctx.Set("role", model.Role(r))
			}
			return next(ctx)
		}
	})

	authed.GET("/users/me", c.Auth.Me)

	// Library catalog
	authed.GET("/library/books", c.Book.List)
	authed.GET("/library/books/:id", c.Book.Detail)
	authed.POST("/library/books", c.Book.Create, RequireCap(model.CapManageCatalog))
	authed.POST("/library/books/:id/copies", c.Book.AddCopies, RequireCap(model.CapManageCatalog))
	authed.DELETE("/library/books/:id", c.Book.Delete, RequireCap(model.CapManageCatalog))

	// Borrow lifecycle
	authed.POST("/library/books/:id/borrow", c.Borrow.Borrow, RequireCap(model.CapBorrowBooks))
	authed.POST("/library/borrows/:id/renew", c.Borrow.Renew, RequireCap(model.CapBorrowBooks))
	authed.POST("/library/borrows/:id/return", c.Borrow.Return, RequireCap(model.CapBorrowBooks))
	authed.GET("/library/history", c.Borrow.MyHistory)
	authed.GET("/library/borrows", c.Borrow.ListAll, RequireCap(model.CapManageBorrows))
	authed.POST("/library/borrows/:id/lost", c.Borrow.MarkLost, RequireCap(model.CapManageBorrows))
	authed.POST("/library/borrows/:id/damaged", c.Borrow.MarkDamaged, RequireCap(model.CapManageBorrows))
	authed.DELETE("/library/borrows/:id", c.Borrow.Delete, RequireCap(model.CapManageBorrows))

	// Reading progress
	authed.GET("/library/books/:id/progress", c.Progress.Get, RequireCap(model.CapTrackProgress))
	authed.PUT("/library/books/:id/progress", c.Progress.Update, RequireCap(model.CapTrackProgress))
	authed.POST("/library/books/:id/rating", c.Progress.Rate, RequireCap(model.CapTrackProgress))
	authed.POST("/library/books/:id/progress/bookmarks", c.Progress.AddBookmark, RequireCap(model.CapTrackProgress))
	authed.GET("/library/books/:id/progress/bookmarks", c.Progress.ListBookmarks, RequireCap(model.CapTrackProgress))

	// Hostel
	authed.GET("/hostel/rooms", c.Hostel.ListRooms)
	authed.GET("/hostel/rooms/:id", c.Hostel.RoomDetail)
	authed.POST("/hostel/rooms", c.Hostel.CreateRoom, RequireCap(model.CapManageRooms))
	authed.PUT("/hostel/rooms/:id", c.Hostel.UpdateRoom, RequireCap(model.CapManageRooms))
	authed.POST("/hostel/allocations", c.Hostel.RequestAllocation, RequireCap(model.CapRequestHousing))
	authed.PUT("/hostel/allocations/:id", c.Hostel.UpdateAllocationStatus, RequireCap(model.CapManageRooms))
	authed.GET("/hostel/allocations/me", c.Hostel.MyAllocation)
	authed.POST("/hostel/service-requests", c.Hostel.SubmitRequest)
	authed.GET("/hostel/service-requests", c.Hostel.ListRequests)
	authed.PUT("/hostel/service-requests/:id/status", c.Hostel.UpdateRequestStatus, RequireCap(model.CapManageRequests))
	authed.POST("/hostel/service-requests/:id/feedback", c.Hostel.AttachFeedback)

	// Fees
	authed.GET("/fees", c.Fee.MyFees)
	authed.GET("/fees/summary", c.Fee.Summary)
	authed.POST("/fees", c.Fee.Create, RequireCap(model.CapManageFees))
	authed.POST("/fees/:id/pay", c.Fee.Pay, RequireCap(model.CapPayFees))

	// Gamification
	authed.GET("/gamification/points", c.Gamification.MyPoints)
	authed.GET("/gamification/leaderboard", c.Gamification.Leaderboard, RequireCap(model.CapViewLeaderboard))
	authed.GET("/gamification/badges", c.Gamification.ListBadges)
	authed.POST("/gamification/badges", c.Gamification.CreateBadge, RequireCap(model.CapManageBadges))
	authed.POST("/gamification/badges/:id/award", c.Gamification.AwardBadge, RequireCap(model.CapManageBadges))
}
