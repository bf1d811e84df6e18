package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	MaxUploadMB        int64
	CORSAllowedOrigins []string
	DataSchema         string
	PublisherName      string
	BaseURL            string
	RabbitMQURL        string
	RabbitMQExchange   string
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOBucket        string
	MinIOUseSSL        bool
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	return &Config{
		Host:               getEnv("CATALOG_HOST", "0.0.0.0"),
		Port:               getEnv("CATALOG_PORT", "8000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 32),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DataSchema:         getEnv("DATA_SCHEMA", "data"),
		PublisherName:      getEnv("PUBLISHER_NAME", "metacatalog"),
		BaseURL:            getEnv("CATALOG_BASE_URL", "http://localhost:8000"),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "metacatalog.events"),
		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", "minioadmin123"),
		MinIOBucket:        getEnv("MINIO_BUCKET_NAME", "metacatalog-uploads"),
		MinIOUseSSL:        getEnv("MINIO_USE_SSL", "false") == "true",
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "metacatalog"),
		DBSSLMode:          getEnv("DB_SSL_MODE", "disable"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid number, using default")
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
