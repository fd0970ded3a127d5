// Package config loads application configuration from the environment.
//
// CONFIGURATION STRATEGY:
// All external collaborators (database, mail transport, frontend URL,
// CORS origins) are configured through environment variables, with a .env
// file loaded in development via godotenv. Nothing in this package is a
// process-wide singleton — main.go loads a Config once and passes it down
// the dependency graph, so tests can construct their own Config values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs at startup.
type Config struct {
	Port        int
	DBPath      string
	JWTSecret   string
	FrontendURL string // base URL used when building password-reset links

	// Mail transport (Resend). Empty API key or dev mode means outgoing
	// email is logged instead of sent.
	ResendAPIKey string
	EmailFrom    string
	ContactEmail string // fixed recipient for the contact form

	CORSAllowedOrigins []string
	Dev                bool
}

// Load reads configuration from the environment, preferring a .env file
// when one exists. It returns an error for settings the server cannot run
// without; optional settings get sensible defaults.
func Load() (*Config, error) {
	// Load .env if present. A missing file is fine — production supplies
	// real environment variables instead.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         8080,
		DBPath:       "data/snippets.db",
		FrontendURL:  "http://localhost:3000",
		EmailFrom:    "noreply@snippets.local",
		ContactEmail: "contact@snippets.local",
		Dev:          os.Getenv("APP_ENV") != "production",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET environment variable is required")
	}

	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.FrontendURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		cfg.ResendAPIKey = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.EmailFrom = v
	}
	if v := os.Getenv("CONTACT_EMAIL"); v != "" {
		cfg.ContactEmail = v
	}

	// Comma-separated list, e.g. "http://localhost:3000,https://app.example.com"
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	} else {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendURL}
	}

	return cfg, nil
}
