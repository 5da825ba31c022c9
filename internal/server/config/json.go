package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/terangapay/terangapay/internal/flagx"
)

// JsonConfig is the DTO for JSON configuration files. Duration fields are
// Go duration strings such as "24h" or "5m".
type JsonConfig struct {
	DatabaseDSN    string `json:"database_dsn"`
	TokenValidity  string `json:"token_validity"`
	OTPValidity    string `json:"otp_validity"`
	PendingWindow  string `json:"pending_window"`
	QRSecret       string `json:"qr_secret"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Absent file path means no JSON
// overlay; an unreadable or invalid file panics, since starting with a
// half-applied config is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayDuration(&config.TokenValidity, c.TokenValidity)
	overlayDuration(&config.OTPValidity, c.OTPValidity)
	overlayDuration(&config.PendingWindow, c.PendingWindow)
	overlayString(&config.QRSecret, c.QRSecret)
	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
