package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config values from environment variables, loading a
// .env file first when one exists. Missing variables leave the current
// values untouched.
func parseEnv(config *Config) {
	// .env is optional; in deployed environments variables come from the
	// process environment directly.
	_ = godotenv.Load()

	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setDuration(&config.TokenValidity, "TOKEN_VALIDITY")
	setDuration(&config.OTPValidity, "OTP_VALIDITY")
	setDuration(&config.PendingWindow, "PENDING_WINDOW")
	setString(&config.QRSecret, "QR_SECRET")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
