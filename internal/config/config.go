package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	JWTSecret           string
	JWTAccessTTLMinutes int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	CORSAllowedOrigins []string
	OTLPEndpoint       string

	TopSkillsCacheTTLSeconds int
	AuthRateLimitPerMinute   int
	MaxBodyBytes             int64
}

func Load() Config {
	// a missing .env file is fine, real deployments use the process env
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" && os.Getenv("DB_HOST") != "" {
		dbURL = buildDBURL()
	}

	return Config{
		Env:   env,
		Port:  port,
		DBURL: dbURL,

		JWTSecret:           getEnv("JWT_SECRET", devSecret(env)),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		TopSkillsCacheTTLSeconds: getEnvInt("TOP_SKILLS_CACHE_TTL_SECONDS", 30),
		AuthRateLimitPerMinute:   getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		MaxBodyBytes:             int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// Validate catches settings that are only tolerable on a developer machine.
func (c Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	if c.JWTAccessTTLMinutes <= 0 {
		return errors.New("JWT_ACCESS_TTL_MINUTES must be positive")
	}

	if c.Env != "dev" && c.Env != "test" {
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required outside dev")
		}
		if c.DBURL == "" {
			return errors.New("DB_URL or DB_HOST is required outside dev")
		}
	}

	return nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) TopSkillsCacheTTL() time.Duration {
	return time.Duration(c.TopSkillsCacheTTLSeconds) * time.Second
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "profilehub")
	pass := getEnv("DB_PASSWORD", "profilehub")
	name := getEnv("DB_NAME", "profilehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout is detached from the request on purpose: a client hanging up
// does not cancel a store operation that is already running.
func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

// DetachedTimeout is WithTimeout for request handlers: values on parent
// (trace span, actor) carry over, its cancellation does not.
func DetachedTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), duration)
}

func devSecret(env string) string {
	if env == "dev" || env == "test" {
		return "dev-only-secret"
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
