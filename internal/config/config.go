package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	SupabaseURL string
	JWKSURL     string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	DevUserID   string // Acting user when no JWKS is configured (never honoured in prod)
	CORSOrigins string
	TablePrefix string
	// Selection store (empty RedisURL selects the in-memory store)
	RedisURL     string
	SelectionTTL time.Duration
	// Search (empty MeiliURL selects postgres full-text search)
	MeiliURL    string
	MeiliAPIKey string
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  env,
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SupabaseURL:  supabaseURL,
		JWKSURL:      jwksURL,
		DevUserID:    getEnv("DEV_USER_ID", ""),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:  tablePrefix,
		RedisURL:     getEnv("REDIS_URL", ""),
		SelectionTTL: getDuration("SELECTION_TTL", 24*time.Hour),
		MeiliURL:     getEnv("MEILI_URL", ""),
		MeiliAPIKey:  getEnv("MEILI_API_KEY", ""),
		LogDir:       getEnv("LOG_DIR", ""),
		LogMaxFiles:  getInt("LOG_MAX_FILES", 10),
		// Debug defaults to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// DevAuth reports whether requests should run as DevUserID instead of
// verifying bearer tokens
func (c *Config) DevAuth() bool {
	return c.JWKSURL == "" && c.DevUserID != "" && c.Environment != "prod"
}

// CORSOriginList splits CORS_ORIGINS on commas
func (c *Config) CORSOriginList() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
