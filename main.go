// Package main campus portal API.
//
// @title           Campus Portal API
// @version         1.0
// @description     Student portal backend (library, hostel, fees, gamification).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	echoSwagger "github.com/swaggo/echo-swagger"

	"campusportal/app/echoServer"
	authctrl "campusportal/app/echoServer/controller/auth"
	bookctrl "campusportal/app/echoServer/controller/book"
	borrowctrl "campusportal/app/echoServer/controller/borrow"
	feectrl "campusportal/app/echoServer/controller/fee"
	gamificationctrl "campusportal/app/echoServer/controller/gamification"
	hostelctrl "campusportal/app/echoServer/controller/hostel"
	progressctrl "campusportal/app/echoServer/controller/progress"
	"campusportal/app/echoServer/validation"
	"campusportal/config"
	authrepo "campusportal/repository/auth"
	bookrepo "campusportal/repository/book"
	borrowrepo "campusportal/repository/borrow"
	feerepo "campusportal/repository/fee"
	gamificationrepo "campusportal/repository/gamification"
	gatewayrepo "campusportal/repository/gateway"
	hostelrepo "campusportal/repository/hostel"
	progressrepo "campusportal/repository/progress"
	authsvc "campusportal/service/auth"
	booksvc "campusportal/service/book"
	borrowsvc "campusportal/service/borrow"
	feesvc "campusportal/service/fee"
	gamificationsvc "campusportal/service/gamification"
	hostelsvc "campusportal/service/hostel"
	progresssvc "campusportal/service/progress"
	"campusportal/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// redis (leaderboard cache); the portal works without it
	var cache gamificationsvc.Cache = gamificationsvc.NopCache{}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, leaderboard cache disabled", "err", err)
	} else {
		cache = gamificationsvc.NewRedisCache(rdb)
	}

	// repos
	ar := authrepo.New(db)
	br := bookrepo.New(db)
	bor := borrowrepo.New(db)
	hr := hostelrepo.New(db)
	fr := feerepo.New(db)
	gr := gamificationrepo.New(db)
	pr := progressrepo.New(db)
	gw := gatewayrepo.NewHTTP(cfg.GatewayAPIKey, cfg.GatewayToken, cfg.GatewayURL,
		time.Duration(cfg.GatewayTimeoutSec)*time.Second)

	// services
	gs := gamificationsvc.New(gr, cache)
	as := authsvc.New(ar, cfg.JWTSecret)
	bs := booksvc.New(br)
	bos := borrowsvc.New(db, bor, br, fr, gs, cfg.FinePerDay)
	hs := hostelsvc.New(db, hr)
	fs := feesvc.New(db, fr, gw, gs)
	ps := progresssvc.New(db, pr, gs)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: bos, V: v, Log: log}
	progressC := &progressctrl.Controller{Svc: ps, V: v, Log: log}
	hostelC := &hostelctrl.Controller{Svc: hs, V: v, Log: log}
	feeC := &feectrl.Controller{Svc: fs, V: v, Log: log}
	gamificationC := &gamificationctrl.Controller{Svc: gs, V: v, Log: log}

	// scheduled sweeps: persist derived overdue state
	cr := cron.New()
	_, _ = cr.AddFunc("@hourly", func() {
		n, err := bos.SweepOverdue(context.Background())
		if err != nil {
			log.Error("borrow sweep failed", "err", err)
			return
		}
		if n > 0 {
			log.Info("borrow sweep", "flipped", n)
		}
	})
	_, _ = cr.AddFunc("@hourly", func() {
		n, err := fs.SweepOverdueFees(context.Background())
		if err != nil {
			log.Error("fee sweep failed", "err", err)
			return
		}
		if n > 0 {
			log.Info("fee sweep", "flipped", n)
		}
	})
	cr.Start()
	defer cr.Stop()

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]any{"status": "degraded", "message": "database unreachable"})
		}
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Book:         bookC,
		Borrow:       borrowC,
		Progress:     progressC,
		Hostel:       hostelC,
		Fee:          feeC,
		Gamification: gamificationC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
