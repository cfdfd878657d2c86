// Package config loads service settings from the environment.
//
// Every key is read from a TRUTH_DARE_ prefixed variable. A .env file in the
// working directory is loaded first when present; variables already set in
// the real environment win over it. CLI flags are applied on top by the
// caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TRUTH_DARE_"

// Source types.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Config holds every setting the service and CLI need.
type Config struct {
	Host        string
	Port        int
	APIPrefix   string
	CORSOrigins []string

	Source            string
	TruthsFile        string
	DaresFile         string
	TruthsURL         string
	DaresURL          string
	OAuthTokenURL     string
	OAuthClientID     string
	OAuthClientSecret string
	DatabaseDSN       string

	LoadTimeout    time.Duration
	ReloadInterval time.Duration // 0 disables periodic reloads

	LogLevel  string
	LogFormat string

	AdminJWTSecret    string
	AdminPasswordHash string

	AppName    string
	AppVersion string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Host:        "127.0.0.1",
		Port:        8000,
		APIPrefix:   "/api/v1",
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		Source:      SourceFile,
		TruthsFile:  "data/truths.json",
		DaresFile:   "data/dares.json",
		LoadTimeout: 10 * time.Second,
		LogLevel:    "info",
		LogFormat:   "text",
		AppName:     "Truth and Dare API",
		AppVersion:  "0.1.0",
	}
}

// Load reads .env (if any) and the process environment and validates the
// result.
func Load() (Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without Validate, for callers that still apply
// overrides such as command-line flags.
func LoadUnvalidated() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}
	return ParseEnv(os.Getenv)
}

// FromEnv builds a validated Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg, err := ParseEnv(getenv)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv builds a Config from getenv, starting from Default. Keys are given
// without the TRUTH_DARE_ prefix. Only malformed numbers and durations are
// errors; ranges and cross-field rules are left to Validate.
func ParseEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	get := func(key string) string {
		return strings.TrimSpace(getenv(envPrefix + key))
	}

	setString := func(dst *string, key string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Host, "HOST")
	setString(&cfg.APIPrefix, "API_PREFIX")
	setString(&cfg.Source, "SOURCE")
	setString(&cfg.TruthsFile, "TRUTHS_FILE")
	setString(&cfg.DaresFile, "DARES_FILE")
	setString(&cfg.TruthsURL, "TRUTHS_URL")
	setString(&cfg.DaresURL, "DARES_URL")
	setString(&cfg.OAuthTokenURL, "OAUTH_TOKEN_URL")
	setString(&cfg.OAuthClientID, "OAUTH_CLIENT_ID")
	setString(&cfg.OAuthClientSecret, "OAUTH_CLIENT_SECRET")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.AdminJWTSecret, "ADMIN_JWT_SECRET")
	setString(&cfg.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&cfg.AppName, "APP_NAME")
	setString(&cfg.AppVersion, "APP_VERSION")

	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %sPORT: %q is not a number", envPrefix, v)
		}
		cfg.Port = port
	}
	if v := get("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = SplitList(v)
	}

	var err error
	if cfg.LoadTimeout, err = duration(get("LOAD_TIMEOUT"), cfg.LoadTimeout); err != nil {
		return Config{}, fmt.Errorf("config: %sLOAD_TIMEOUT: %w", envPrefix, err)
	}
	if cfg.ReloadInterval, err = duration(get("RELOAD_INTERVAL"), cfg.ReloadInterval); err != nil {
		return Config{}, fmt.Errorf("config: %sRELOAD_INTERVAL: %w", envPrefix, err)
	}

	cfg.Source = strings.ToLower(cfg.Source)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	return cfg, nil
}

// duration parses a Go duration. A bare integer is taken as seconds.
func duration(v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not a duration", v)
	}
	return d, nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks ranges and cross-field requirements. All problems are
// reported together.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("api prefix %q must start with /", c.APIPrefix))
	}
	if c.LoadTimeout < 0 || c.ReloadInterval < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}

	switch c.Source {
	case SourceFile:
		if c.TruthsFile == "" || c.DaresFile == "" {
			errs = append(errs, errors.New("file source needs both TRUTHS_FILE and DARES_FILE"))
		}
	case SourceHTTP:
		if c.TruthsURL == "" || c.DaresURL == "" {
			errs = append(errs, errors.New("http source needs both TRUTHS_URL and DARES_URL"))
		}
		if c.OAuthTokenURL != "" && c.OAuthClientID == "" {
			errs = append(errs, errors.New("OAUTH_TOKEN_URL is set but OAUTH_CLIENT_ID is empty"))
		}
	case SourceSQLite, SourcePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("%s source needs DATABASE_DSN", c.Source))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q (want file, http, sqlite or postgres)", c.Source))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format %q must be text or json", c.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AdminEnabled reports whether the admin endpoints can be served.
func (c Config) AdminEnabled() bool {
	return c.AdminJWTSecret != "" && c.AdminPasswordHash != ""
}

// ParseLevel maps a level name to a slog.Level. "warning" is accepted for warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log level %q must be debug, info, warn or error", s)
}
