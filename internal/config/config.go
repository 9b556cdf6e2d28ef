// Package config loads runtime settings from the environment and holds the
// business constants of the report portal.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the process configuration assembled from environment variables.
type Config struct {
	HTTPAddr      string
	StorageDriver string
	DatabaseDSN   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Endpoint       string
	S3Region         string
	S3AccessKey      string
	S3SecretKey      string
	S3PublicURL      string
	AttachmentBucket string
	DonationBucket   string

	AuthJWTSecret string
	AuthJWTIssuer string

	TelegramBotToken    string
	TelegramAdminChatID int64

	// TrustedProxies lists the proxy addresses or CIDRs whose
	// X-Forwarded-For is honoured. Empty means the TCP peer is the client.
	TrustedProxies []string

	Location *time.Location
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: .env file not loaded, using process environment")
	}

	cfg := &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		StorageDriver:    getEnv("STORAGE_DRIVER", DriverPostgres),
		DatabaseDSN:      os.Getenv("DB_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),
		AttachmentBucket: getEnv("ATTACHMENT_BUCKET", "attachments"),
		DonationBucket:   getEnv("DONATION_BUCKET", "attachments"),
		AuthJWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		AuthJWTIssuer:    os.Getenv("AUTH_JWT_ISSUER"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "user"),
			getEnv("DB_PASSWORD", "password"),
			getEnv("DB_NAME", "campusreport"),
			getEnv("DB_PORT", "5432"),
		)
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	chatID, err := getInt("TELEGRAM_ADMIN_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}
	cfg.TelegramAdminChatID = int64(chatID)

	cfg.TrustedProxies = getList("TRUSTED_PROXIES")

	tz := getEnv("APP_TIMEZONE", "Asia/Jakarta")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		log.Printf("WARNING: unknown APP_TIMEZONE %q, falling back to UTC: %v", tz, err)
		cfg.Location = time.UTC
	}

	switch cfg.StorageDriver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
