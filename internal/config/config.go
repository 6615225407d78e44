package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development signing key used when JWT_SECRET is unset.
const DefaultJWTSecret = "dev_secret_change_me"

type Config struct {
	Port      string `env:"PORT" envDefault:"5175"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"` // DefaultJWTSecret
	JWTIssuer string `env:"JWT_ISSUER"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	StripeKey      string `env:"STRIPE_SECRET_KEY"`
	HintPriceID    string `env:"HINT_PRICE_ID"`
	HintSuccessURL string `env:"HINT_SUCCESS_URL"`

	RotateSchedule    string `env:"ROTATE_SCHEDULE" envDefault:"0 0 * * *"`
	RotateOnStart     bool   `env:"ROTATE_ON_START" envDefault:"true"`
	RotateMaxAttempts int    `env:"ROTATE_MAX_ATTEMPTS" envDefault:"5"`
	// bcrypt hash of the bearer token accepted by POST /admin/rotate.
	// Empty disables the endpoint.
	RotateTokenHash string `env:"ROTATE_TOKEN_HASH"`

	WordsAllowedFile string `env:"WORDS_ALLOWED_FILE"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	BackgroundWorkers  int           `env:"BACKGROUND_WORKERS" envDefault:"4"`
	BackgroundQueue    int           `env:"BACKGROUND_QUEUE" envDefault:"256"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for postgres")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.UsesDefaultSecret() && (c.DBDriver == "postgres" || c.RedisURL != "") {
		return errors.New("JWT_SECRET must be set when using postgres or redis")
	}
	if c.RotateMaxAttempts < 1 {
		return errors.New("ROTATE_MAX_ATTEMPTS must be at least 1")
	}
	if c.StripeKey != "" && (c.HintPriceID == "" || c.HintSuccessURL == "") {
		return errors.New("HINT_PRICE_ID and HINT_SUCCESS_URL are required with STRIPE_SECRET_KEY")
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are verified with the public
// development key.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}
