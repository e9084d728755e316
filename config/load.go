package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() App {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := App{
		Port:              getenv("APP_PORT", "8080"),
		DatabaseURL:       must("DATABASE_URL"),
		JWTSecret:         getenv("JWT_SECRET", "local_dev_secret"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		GatewayAPIKey:     os.Getenv("GATEWAY_API_KEY"),
		GatewayURL:        getenv("GATEWAY_URL", "https://api.xendit.co/v2/invoices"),
		GatewayToken:      os.Getenv("GATEWAY_CALLBACK_TOKEN"),
		GatewayTimeoutSec: getint("GATEWAY_TIMEOUT_SEC", 10),
		FinePerDay:        getfloat("FINE_PER_DAY", 5),
		Env:               getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
