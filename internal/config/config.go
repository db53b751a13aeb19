package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime configuration, read from the environment after
// godotenv has loaded any .env file.
type Config struct {
	DatabaseURL string
	Port        string

	JWTSecret string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	LogOutput     string
	LogMaxAgeDays int

	// Cron specs for the background jobs.
	FinishSweepSpec string
	RetrainSpec     string

	// Recommender training knobs.
	RecommendFactors    int
	RecommendIterations int
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "SmartPark"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:  os.Getenv("TWILIO_FROM_NUMBER"),
		LogOutput:         getEnv("LOG_OUTPUT", "stdout"),
		LogMaxAgeDays:     getEnvInt("LOG_MAX_AGE_DAYS", 7),
		FinishSweepSpec:   getEnv("FINISH_SWEEP_CRON", "*/10 * * * *"),
		RetrainSpec:       getEnv("RETRAIN_CRON", "0 3 * * *"),

		RecommendFactors:    getEnvInt("RECOMMEND_FACTORS", 16),
		RecommendIterations: getEnvInt("RECOMMEND_ITERATIONS", 50),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return cfg, nil
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
