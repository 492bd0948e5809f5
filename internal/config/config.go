package config

import (
	"fmt"
	"time"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"development"`
	Port            string        `env:"PORT" envDefault:"5000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	StoreDriver     string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI        string        `env:"MONGODB_URI"`
	DBName          string        `env:"DB_NAME" envDefault:"apporbitDB"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	MongoTxnEnabled bool          `env:"MONGO_TRANSACTIONS" envDefault:"false"`

	JWTSecret string `env:"JWT_SECRET,required"`
	JWTIssuer string `env:"JWT_ISSUER"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	PaymentCurrency string `env:"PAYMENT_CURRENCY" envDefault:"usd"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// Validate checks the cross-field rules the env tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
