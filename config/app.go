package config

type App struct {
	Port              string  `env:"APP_PORT" default:"8080"`
	DatabaseURL       string  `env:"DATABASE_URL,required"`
	JWTSecret         string  `env:"JWT_SECRET,required"`
	RedisAddr         string  `env:"REDIS_ADDR" default:"localhost:6379"`
	GatewayAPIKey     string  `env:"GATEWAY_API_KEY"`
	GatewayURL        string  `env:"GATEWAY_URL" default:"https://api.xendit.co/v2/invoices"`
	GatewayToken      string  `env:"GATEWAY_CALLBACK_TOKEN"`
	GatewayTimeoutSec int     `env:"GATEWAY_TIMEOUT_SEC" default:"10"`
	FinePerDay        float64 `env:"FINE_PER_DAY" default:"5"`
	Env               string  `env:"APP_ENV" default:"dev"`
}
