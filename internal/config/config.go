package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// Default public devnet endpoint; the demo never holds real funds.
const defaultRPCURL = "https://api.devnet.solana.com"

type Config struct {
	Port string

	// DatabasePath is the SQLite file backing the record store. Empty means
	// in-memory storage: subscriptions then reset on restart, like a cleared
	// browser profile.
	DatabasePath string

	SolanaRPCURL string
	SentryDSN    string

	RateLimitMax int

	ReceiptEmails bool
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
}

// New reads configuration from the environment. All problems are reported
// together rather than one restart at a time.
func New() (*Config, error) {
	cfg := &Config{
		Port:         os.Getenv("PORT"),
		DatabasePath: os.Getenv("DATABASE_PATH"),
		SolanaRPCURL: os.Getenv("SOLANA_RPC_URL"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     os.Getenv("SMTP_PORT"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		RateLimitMax: 60,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SolanaRPCURL == "" {
		cfg.SolanaRPCURL = defaultRPCURL
	}

	var result *multierror.Error

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		result = multierror.Append(result, errors.New("PORT must be numeric"))
	}

	if raw := os.Getenv("RATE_LIMIT_MAX"); raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil || max < 0 {
			result = multierror.Append(result, errors.New("RATE_LIMIT_MAX must be a non-negative integer"))
		} else {
			cfg.RateLimitMax = max
		}
	}

	cfg.ReceiptEmails = os.Getenv("RECEIPT_EMAILS") == "true"
	if cfg.ReceiptEmails {
		if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
			result = multierror.Append(result, errors.New("SMTP_HOST, SMTP_PORT, SMTP_USER, and SMTP_PASS are required when RECEIPT_EMAILS is enabled"))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return cfg, nil
}
