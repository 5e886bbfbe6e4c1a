package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	RawMailDir string
	StagingDir string
	OutputDir  string

	CrossRefPath      string
	CrossRefURL       string
	CrossRefTimeoutMs int

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	// Comma-separated sender address fragments; empty means accept all.
	SupplierSenders []string

	ListenerProvider    string
	ListenerLabel       string
	ListenerIntervalSec int
	ListenerFetchMax    int
	ListenerStageBatch  int
	ListenerAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "pricing.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		StagingDir: getEnv("STAGING_DIR", filepath.Join(cwd, "data", "staging")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		CrossRefPath:      getEnv("CROSSREF_PATH", filepath.Join(cwd, "data", "terminal-product-names.csv")),
		CrossRefURL:       getEnv("CROSSREF_URL", ""),
		CrossRefTimeoutMs: getEnvInt("CROSSREF_TIMEOUT_MS", 30000),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		SupplierSenders: getEnvList("SUPPLIER_SENDERS", ""),

		ListenerProvider:    getEnv("LISTENER_PROVIDER", "imap"),
		ListenerLabel:       getEnv("LISTENER_LABEL", "INBOX"),
		ListenerIntervalSec: getEnvInt("LISTENER_INTERVAL_SEC", 300),
		ListenerFetchMax:    getEnvInt("LISTENER_FETCH_MAX", 50),
		ListenerStageBatch:  getEnvInt("LISTENER_STAGE_BATCH", 50),
		ListenerAutoExport:  getEnvBool("LISTENER_AUTO_EXPORT", true),
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

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	value := getEnv(key, fallback)
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
