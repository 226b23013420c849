package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DateLayout is the day format used throughout the worksheet and the run
// parameters (e.g. 08.02.2026).
const DateLayout = "02.01.2006"

type Config struct {
	SpreadsheetURL string
	WorksheetName  string
	TargetDate     string
	InvoicePrefix  string

	OutputDir        string
	CSVFileName      string
	ShortcutFileName string
	RedirectURL      string

	WebhookURL string

	GoogleAPIKey       string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	AmountMode string

	AuditDBPath string

	SheetsTimeoutMs  int
	WebhookTimeoutMs int
	RetryAttempts    int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SpreadsheetURL: getEnv("SPREADSHEET_URL", ""),
		WorksheetName:  getEnv("WORKSHEET_NAME", "transfers"),
		TargetDate:     getEnv("TARGET_DATE", time.Now().Format(DateLayout)),
		InvoicePrefix:  getEnv("INVOICE_PREFIX", "IN0"),

		OutputDir:        getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		CSVFileName:      getEnv("CSV_FILE_NAME", "bank_transfers.csv"),
		ShortcutFileName: getEnv("SHORTCUT_FILE_NAME", "billing_upload.url"),
		RedirectURL:      getEnv("REDIRECT_URL", ""),

		WebhookURL: getEnv("WEBHOOK_URL", ""),

		GoogleAPIKey:       getEnv("GOOGLE_API_KEY", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		AmountMode: getEnv("AMOUNT_MODE", "legacy"),

		AuditDBPath: getEnv("AUDIT_DB_PATH", filepath.Join(cwd, "data", "billfeed.db")),

		SheetsTimeoutMs:  getEnvInt("SHEETS_TIMEOUT_MS", 15000),
		WebhookTimeoutMs: getEnvInt("WEBHOOK_TIMEOUT_MS", 10000),
		RetryAttempts:    getEnvInt("RETRY_ATTEMPTS", 3),
	}

	if _, err := time.Parse(DateLayout, cfg.TargetDate); err != nil {
		return Config{}, fmt.Errorf("TARGET_DATE must be DD.MM.YYYY, got %q", cfg.TargetDate)
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
