package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string

	DBDriver   string
	MySQLDSN   string
	SQLitePath string
	ResetDB    bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret        string
	JWTRefreshSecret string
	JWTExpire        time.Duration
	JWTRefreshExpire time.Duration

	ClientURLs       []string
	RateLimitWindow  time.Duration
	RateLimitMax     int
	UploadDir        string
	PublicBaseURL    string
	MaxUploadBytes   int64
	MaxUploadedFiles int

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	OAuth OAuthConfig

	LogLevel    string
	LogFormat   string
	SwaggerHost string
}

// OAuthConfig describes the OIDC provider used for social login.
type OAuthConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether enough settings are present to run the OAuth flow.
func (o OAuthConfig) Enabled() bool {
	return o.IssuerURL != "" && o.ClientID != "" && o.RedirectURL != ""
}

// IsDevelopment reports whether detailed errors may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("APP_ENV", EnvProduction),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/spotly?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath: getEnv("SQLITE_PATH", "spotly.db"),
		ResetDB:    getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-too"),
		JWTExpire:        getEnvDuration("JWT_EXPIRE", 24*time.Hour),
		JWTRefreshExpire: getEnvDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),

		ClientURLs:       clientURLs(os.Getenv("CLIENT_URL")),
		RateLimitWindow:  rateLimitWindow(),
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:    strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		MaxUploadedFiles: getEnvInt("MAX_UPLOADED_FILES", 5),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTimeout: getEnvDuration("GEMINI_TIMEOUT", 15*time.Second),

		OAuth: OAuthConfig{
			IssuerURL:    os.Getenv("OAUTH_ISSUER_URL"),
			ClientID:     os.Getenv("OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OAUTH_REDIRECT_URL"),
		},

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

// rateLimitWindow reads RATE_LIMIT_WINDOW_MS, falling back to 15 minutes when it is not positive.
func rateLimitWindow() time.Duration {
	ms := getEnvInt("RATE_LIMIT_WINDOW_MS", 900000)
	if ms <= 0 {
		ms = 900000
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("15m") and whole days ("7d").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, ok := parseDuration(v); ok {
		return d
	}
	return def
}

func parseDuration(v string) (time.Duration, bool) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

func clientURLs(raw string) []string {
	urls := []string{"http://localhost:3000"}
	for _, u := range strings.Split(raw, ",") {
		u = strings.TrimSpace(u)
		if u != "" && u != urls[0] {
			urls = append(urls, u)
		}
	}
	return urls
}
