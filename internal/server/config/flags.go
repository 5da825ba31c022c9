package config

import (
	"flag"
	"os"
	"time"

	"github.com/terangapay/terangapay/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-t int      token validity, minutes
//	-o int      OTP validity, minutes
//	-w int      pending window, minutes
//	-q string   QR HMAC secret
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// Arguments are filtered with flagx.FilterArgs first so flags owned by other
// packages do not interfere.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-o", "-w", "-q", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	tokenValidity := fs.Int("t", int(config.TokenValidity.Minutes()), "token validity (in minutes)")
	otpValidity := fs.Int("o", int(config.OTPValidity.Minutes()), "OTP validity (in minutes)")
	pendingWindow := fs.Int("w", int(config.PendingWindow.Minutes()), "pending window (in minutes)")

	fs.StringVar(&config.QRSecret, "q", config.QRSecret, "QR HMAC secret")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Minute
	config.OTPValidity = time.Duration(*otpValidity) * time.Minute
	config.PendingWindow = time.Duration(*pendingWindow) * time.Minute
}
