package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	EmailLog      = "log"
	EmailRabbitMQ = "rabbitmq"
	EmailSMTP     = "smtp"
)

type Config struct {
	//App
	Env       string // dev / staging / prod
	AppOrigin string // frontend origin used in email links
	//HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP
	TrustProxy bool
	//Auth / Security
	JWTSecret             string
	JWTIssuer             string
	AccessCookieTTL       time.Duration
	RefreshCookieTTL      time.Duration
	PasswordResetTokenTTL time.Duration
	BcryptCost            int

	// Storage
	StoreDriver string
	MongoURI    string
	MongoDB     string
	DBAddr      string

	// Rate limiting, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RLLimit       int
	RLWindow      time.Duration

	// Email delivery
	EmailTransport string
	EmailFrom      string
	EmailFromName  string
	RabbitURL      string
	RabbitExchange string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPInsecure   bool
	SMTPTimeout    time.Duration
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// Load reads the environment, after an optional .env file, and fails fast on
// missing or malformed values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		AppOrigin:      strings.TrimRight(getEnv("APP_ORIGIN", "http://localhost:3000"), "/"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		JWTIssuer:      getEnv("JWT_ISSUER", "account-service"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDB:        getEnv("MONGO_DB", "auth"),
		DBAddr:         os.Getenv("DB_ADDR"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		EmailTransport: strings.ToLower(getEnv("EMAIL_TRANSPORT", EmailLog)),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@localhost"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Account Service"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "city.events"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	var err error
	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"ACCESS_COOKIE_TTL", 24 * time.Hour, &cfg.AccessCookieTTL},
		{"REFRESH_COOKIE_TTL", 30 * 24 * time.Hour, &cfg.RefreshCookieTTL},
		{"PASSWORD_RESET_TOKEN_TTL", 10 * time.Minute, &cfg.PasswordResetTokenTTL},
		{"HTTP_READ_TIMEOUT", 10 * time.Second, &cfg.HTTPReadTimeout},
		{"HTTP_WRITE_TIMEOUT", 30 * time.Second, &cfg.HTTPWriteTimeout},
		{"HTTP_IDLE_TIMEOUT", time.Minute, &cfg.HTTPIdleTimeout},
		{"RL_WINDOW", time.Minute, &cfg.RLWindow},
		{"SMTP_TIMEOUT", 10 * time.Second, &cfg.SMTPTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"BCRYPT_COST", 10, &cfg.BcryptCost},
		{"REDIS_DB", 0, &cfg.RedisDB},
		{"RL_LIMIT", 20, &cfg.RLLimit},
		{"SMTP_PORT", 587, &cfg.SMTPPort},
	}
	for _, i := range ints {
		if *i.dst, err = getInt(i.key, i.def); err != nil {
			return nil, err
		}
	}

	if cfg.SMTPInsecure, err = getBool("SMTP_INSECURE", false); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = getBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("missing required env var: MONGO_URI")
		}
	case StorePostgres:
		if cfg.DBAddr == "" {
			return nil, fmt.Errorf("missing required env var: DB_ADDR")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (want mongo or postgres)", cfg.StoreDriver)
	}

	switch cfg.EmailTransport {
	case EmailLog:
	case EmailRabbitMQ:
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env var: RABBIT_URL")
		}
	case EmailSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("missing required env var: SMTP_HOST")
		}
	default:
		return nil, fmt.Errorf("invalid EMAIL_TRANSPORT %q (want log, rabbitmq or smtp)", cfg.EmailTransport)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return i, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %q: %w", key, v, err)
	}
	return b, nil
}
