package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application runtime configuration.
type Config struct {
	Env               string
	HTTPPort          string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	FirebaseProjectID string
	FirebaseCredFile  string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CurrencySymbol    string
	DashboardTimeout  time.Duration
	CacheTTL          time.Duration
	NotifyRole        string
	NotifyBranch      string
	FCMTopic          string
	WorkerEnabled     bool
	RefreshCron       string
	ReadTimeout       time.Duration
	StreamHeartbeat   time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	OpenAPIPath       string
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenTTL:    getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		FirebaseProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredFile:  os.Getenv("FIREBASE_CREDENTIALS"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "₹"),
		DashboardTimeout:  getDuration("DASHBOARD_TIMEOUT", 5*time.Second),
		CacheTTL:          getDuration("CACHE_TTL", 24*time.Hour),
		NotifyRole:        getEnv("NOTIFY_ROLE", "super_admin"),
		NotifyBranch:      os.Getenv("NOTIFY_BRANCH"),
		FCMTopic:          getEnv("FCM_TOPIC", "salon-admins"),
		WorkerEnabled:     getBool("WORKER_ENABLED", false),
		RefreshCron:       getEnv("DASHBOARD_REFRESH_CRON", "*/15 * * * *"),
		ReadTimeout:       getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		StreamHeartbeat:   getDuration("STREAM_HEARTBEAT", 25*time.Second),
		IdleTimeout:       getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		OpenAPIPath:       getEnv("OPENAPI_PATH", "api/openapi.yaml"),
	}

	if cfg.FirebaseProjectID == "" {
		return cfg, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	if cfg.NotifyRole != "super_admin" && cfg.NotifyRole != "branch_admin" {
		return cfg, errors.New("NOTIFY_ROLE must be super_admin or branch_admin")
	}
	if cfg.NotifyRole == "branch_admin" && cfg.NotifyBranch == "" {
		return cfg, errors.New("NOTIFY_BRANCH is required when NOTIFY_ROLE=branch_admin")
	}
	if cfg.WorkerEnabled && cfg.RedisAddr == "" {
		return cfg, errors.New("REDIS_ADDR is required when WORKER_ENABLED=true")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
