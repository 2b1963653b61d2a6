package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort  string
	LogLevel    string
	ServiceName string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DatasetBackend selects the batch-mode record sink: "postgres" or "redis".
	DatasetBackend string

	// InputFile is the batch-mode task descriptor. When the file is absent
	// the runner falls back to the CRAWL_INPUT environment variable.
	InputFile string

	// HandlerTimeout bounds one full interaction+extraction sequence.
	HandlerTimeout time.Duration

	Headless bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServiceName:      getEnv("SERVICE_NAME", "image-crawler-service"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:       getEnv("POSTGRES_DB", "crawler"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		DatasetBackend:   getEnv("DATASET_BACKEND", "postgres"),
		InputFile:        getEnv("INPUT_FILE", "input.json"),
		HandlerTimeout:   getEnvAsDuration("HANDLER_TIMEOUT_SECONDS", 180) * time.Second,
		Headless:         getEnvAsBool("HEADLESS", true),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback))
}
