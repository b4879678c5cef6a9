package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Config is read once at startup.
type Config struct {
	Mode     Mode
	HTTPAddr string

	CatalogueSource string // fs|sql
	DBDriver        string
	DBDSN           string
	BlobBasePath    string // root holding sets/<id>.yaml

	PageTokenSecret string
	PageTokenTTL    time.Duration
	PageIdleTTL     time.Duration

	CORSOrigins    []string
	UnparsedPolicy string // well_formed|always
	LogLevel       string
}

// Load reads an optional dotenv file into the environment and returns
// FromEnv. Variables already set are not overridden.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f) // missing file is fine
	}
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000,http://localhost:4000"
	if mode == ModeOnline {
		defOrigins = "https://courses.mindengage.ai"
	}
	return Config{
		Mode:            mode,
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		CatalogueSource: envOr("CATALOGUE_SOURCE", "fs"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		BlobBasePath:    envOr("BLOB_BASE_PATH", "./content"),
		PageTokenSecret: envOr("PAGE_TOKEN_SECRET", "selfcheck-dev-secret"),
		PageTokenTTL:    envDuration("PAGE_TOKEN_TTL", 8*time.Hour),
		PageIdleTTL:     envDuration("PAGE_IDLE_TTL", 2*time.Hour),
		CORSOrigins:     csvOr("CORS_ORIGINS", defOrigins),
		UnparsedPolicy:  envOr("UNPARSED_POLICY", "well_formed"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
