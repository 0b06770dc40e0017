package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresHost      string
	PostgresPort      string
	PostgresUser      string
	PostgresPassword  string
	PostgresDB        string
	TelegramToken     string
	OpenAIKey         string
	GoogleCalendarID  string
	GoogleCredentials string
	GoogleToken       string
	TimeZone          string
	DeployMode        string
	ServerHost        string
	ServerPort        string
	JWTSigningKey     string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found")
	}

	return &Config{
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:      getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:        getEnv("POSTGRES_DB", "meetingbot"),
		TelegramToken:     getEnv("TELEGRAM_TOKEN", ""),
		OpenAIKey:         getEnv("OPENAI_KEY", ""),
		GoogleCalendarID:  getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleCredentials: getEnv("GOOGLE_CREDENTIALS_B64", ""),
		GoogleToken:       getEnv("GOOGLE_TOKEN_B64", ""),
		TimeZone:          getEnv("TIMEZONE", "Asia/Kolkata"),
		DeployMode:        getEnv("DEPLOY_MODE", "polling"),
		ServerHost:        getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		JWTSigningKey:     getEnv("JWT_SIGNING_KEY", "your-secret-signing-key"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
