package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultDocumentTitle = "Enterprise Cloud Solutions RFP"

type Config struct {
	Addr       string
	Env        string
	CORSOrigin string
	// Redis Configuration. Empty keeps sessions in process memory.
	RedisURL   string
	SessionTTL time.Duration
	// Document / catalog. An empty title falls back to the catalog's own.
	DocumentTitle string
	CatalogPath   string
	// PDF rendering: "layout" (gofpdf) or "chrome" (headless print of the preview)
	PDFEngine     string
	ChromeTimeout time.Duration
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("API_ADDR", ":8787"),
		Env:           getenv("APP_ENV", "development"),
		CORSOrigin:    getenv("CORS_ORIGIN", "*"),
		RedisURL:      getenv("REDIS_URL", ""),
		SessionTTL:    time.Duration(getenvInt("SESSION_TTL_SECONDS", 86400)) * time.Second,
		DocumentTitle: strings.TrimSpace(os.Getenv("RFP_DOCUMENT_TITLE")),
		CatalogPath:   getenv("RFP_CATALOG_PATH", ""),
		PDFEngine:     pdfEngine(getenv("PDF_ENGINE", "layout")),
		ChromeTimeout: time.Duration(getenvInt("CHROME_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func pdfEngine(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "chrome":
		return "chrome"
	default:
		return "layout"
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
