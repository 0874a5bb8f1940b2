package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting for both services. It is
// built once at process start and passed explicitly; handlers never read the
// environment themselves.
type Config struct {
	DBAPIPort  string
	ChatUIPort string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	DBAPIURL string
	LMAPIURL string
	LMAPIKey string
	LMModel  string

	SessionSecret string

	SystemRole    string
	UserRole      string
	AssistantRole string

	SystemMessage  string
	OpeningMessage string
	BotName        string

	LMTimeout time.Duration
}

// Load reads the environment (after loading .env when present) and returns
// the resulting configuration. Defaults mirror a local docker-compose setup.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	return Config{
		DBAPIPort:  getenvDefault("DBAPI_PORT", "8001"),
		ChatUIPort: getenvDefault("CHATUI_PORT", "8002"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getenvDefault("DB_HOST", "localhost"),
		DBPort:      getenvDefault("DB_PORT", "5432"),
		DBUser:      getenvDefault("DB_USER", "myuser"),
		DBPassword:  getenvDefault("DB_PASSWORD", "mypassword"),
		DBName:      getenvDefault("DB_NAME", "postgres"),
		DBSSLMode:   getenvDefault("DB_SSLMODE", "disable"),

		DBAPIURL: getenvDefault("DB_API_URL", "http://localhost:8001"),
		LMAPIURL: getenvDefault("LM_API_URL", "http://localhost:8000"),
		LMAPIKey: getenvDefault("LM_API_KEY", "no-key"),
		LMModel:  getenvDefault("LM_MODEL", "default"),

		SessionSecret: getenvDefault("SESSION_SECRET", "top-secret-key"),

		SystemRole:    getenvDefault("SYSTEM_ROLE", "system"),
		UserRole:      getenvDefault("USER_ROLE", "user"),
		AssistantRole: getenvDefault("ASSISTANT_ROLE", "assistant"),

		SystemMessage: getenvDefault("SYSTEM_MESSAGE", "You are a helpful AI assistant."),
		OpeningMessage: getenvDefault("OPENING_MESSAGE",
			"Hi, how can I help you? I might take about 30 seconds for lengthy answers!"),
		BotName: getenvDefault("BOT_NAME", "JorisBot"),

		LMTimeout: time.Duration(getenvIntDefault("LM_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// DatabaseDSN returns the Postgres connection string, preferring DATABASE_URL
// when it is set.
func (c Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
