package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// RedisConfig holds cache/rate-limit backend settings.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	MaxRetries     int
	DialTimeoutSec int
	TimeoutSec     int
	Prefix         string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SMTPConfig holds outbound mail delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	StartTLS bool
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret             string
	AccessExpiresMin   int
	RefreshExpiresDays int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port             string
	CORSOrigins      string
	DefaultAvatarURL string
	UserCacheTTLSec  int
	RateLimitPerMin  int
	Database         DatabaseConfig
	Redis            RedisConfig
	MinIO            MinIOConfig
	SMTP             SMTPConfig
	JWT              JWTConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:             getEnv("PORT", "8080"), // default only for non-sensitive value
		CORSOrigins:      getEnv("CORS_ORIGINS", "*"),
		DefaultAvatarURL: getEnv("DEFAULT_AVATAR_URL", ""),
		UserCacheTTLSec:  getEnvInt("USER_CACHE_TTL_SEC", 300),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MIN", 10),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			MaxRetries:     getEnvInt("REDIS_MAX_RETRIES", 5),
			DialTimeoutSec: getEnvInt("REDIS_DIAL_TIMEOUT", 10),
			TimeoutSec:     getEnvInt("REDIS_TIMEOUT", 5),
			Prefix:         getEnv("REDIS_PREFIX", "contactsapi:"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", ""),
			FromName: getEnv("MAIL_FROM_NAME", "Contacts App"),
			StartTLS: getEnvBool("MAIL_STARTTLS", true),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			AccessExpiresMin:   getEnvInt("ACCESS_TOKEN_EXPIRES_MIN", 15),
			RefreshExpiresDays: getEnvInt("REFRESH_TOKEN_EXPIRES_DAYS", 7),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
