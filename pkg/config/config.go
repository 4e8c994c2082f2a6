package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
	ExtractorModel    string
	AuthAPIURL        string
	AuthAPIKey        string
	ChatPort          string
	DBPath            string
	HistoryWindow     int
	ExtractionCadence int
	ReplyTimeout      time.Duration
	ExtractionTimeout time.Duration
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvOrPanic(key string, printEnv bool) string {
	value := getEnv(key, "", printEnv)
	if value == "" {
		panic(fmt.Sprintf("Environment variable %s is not set", key))
	}
	return value
}

func getEnvInt(key string, defaultValue int, printEnv bool) int {
	value := getEnv(key, "", printEnv)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Default().Warn("Invalid integer env value, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return parsed
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnv("COMPLETIONS_API_KEY", "", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4o-mini", printEnv),
		ExtractorModel:    getEnv("EXTRACTOR_MODEL", "gpt-4o-mini", printEnv),
		AuthAPIURL:        getEnvOrPanic("AUTH_API_URL", printEnv),
		AuthAPIKey:        getEnv("AUTH_API_KEY", "", printEnv),
		ChatPort:          getEnv("CHAT_PORT", "44777", printEnv),
		DBPath:            getEnv("DB_PATH", "./output/sqlite/store.db", printEnv),
		HistoryWindow:     getEnvInt("HISTORY_WINDOW", 8, printEnv),
		ExtractionCadence: getEnvInt("EXTRACTION_CADENCE", 4, printEnv),
		ReplyTimeout:      time.Duration(getEnvInt("REPLY_TIMEOUT_SECONDS", 30, printEnv)) * time.Second,
		ExtractionTimeout: time.Duration(getEnvInt("EXTRACTION_TIMEOUT_SECONDS", 20, printEnv)) * time.Second,
	}

	return conf, nil
}
