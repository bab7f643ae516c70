package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries everything the server needs from the environment. Load it
// once in main and pass it down; nothing reads env vars after startup.
type Config struct {
	Port        string
	Environment string

	DatabaseDSN string

	AccessTokenSecret  string
	RefreshTokenSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	LogBucket   string

	UploadDir string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),

		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=notehive password=notehive dbname=notehive port=5432 sslmode=disable"),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", "your-secret-key-change-in-production"),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", "your-refresh-secret-change-in-production"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),

		S3Region:    getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:    getEnv("AWS_S3_BUCKET", ""),
		S3AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Endpoint:  getEnv("AWS_S3_ENDPOINT", ""),
		LogBucket:   getEnv("AWS_LOG_BUCKET", ""),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
	}
}

// S3Configured reports whether object storage credentials are present. When
// they are not, uploads fall back to local disk.
func (c *Config) S3Configured() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
