// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config carries everything cmd/server needs from the environment. Load the
// .env file with godotenv before calling New.
type Config struct {
	ListenAddr string
	DataDir    string
	AMQPURL    string
	LogLevel   string
	LogFormat  string
}

func New() Config {
	return Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DataDir:    getEnv("DATA_DIR", "data"),
		AMQPURL:    os.Getenv("AMQP_URL"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt reads an integer env var with a fallback for missing or malformed
// values.
func GetInt(key string, fallback int) int {
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
