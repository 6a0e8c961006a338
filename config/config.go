package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// camera defaults
	DefaultUser string
	WindowSize  int

	// run history database; empty means <output>/.tapodump-history.db
	HistoryPath string

	// S3 mirror target
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		DefaultUser: getEnv("CAMERA_USER", "admin"),
		WindowSize:  getEnvInt("WINDOW_SIZE", 1000),
		HistoryPath: getEnv("HISTORY_PATH", ""),
		ApiURL:      getEnv("API_URL", ""),
		AccessKey:   getEnv("ACCESS_KEY", ""),
		SecretKey:   getEnv("SECRET_KEY", ""),
		BucketName:  getEnv("BUCKET_NAME", ""),
		Region:      getEnv("REGION", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
