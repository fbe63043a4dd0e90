package server

import (
	"os"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port           string
	DBPath         string // empty means in-memory store
	AllowedOrigins []string
	PublicBaseURL  string // external URL used in QR join links
}

const (
	defaultPort          = "8080"
	defaultAllowedOrigin = "*"
)

// LoadConfig builds a Config instance using environment variables when present.
func LoadConfig() Config {
	return Config{
		Port:           getEnv("PORT", defaultPort),
		DBPath:         os.Getenv("DB_PATH"),
		AllowedOrigins: parseAllowedOrigins(getEnv("ALLOWED_ORIGINS", defaultAllowedOrigin)),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
	}
}

func (c Config) allowsAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{defaultAllowedOrigin}
	}
	return origins
}
