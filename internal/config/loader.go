package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const prefix = "MINDEASE_"

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	SessionTTL        time.Duration
	MaxSessions       int
	GeminiAPIKey      string
	GeminiModel       string
	ReplyTimeout      time.Duration
	RecommendationTTL time.Duration
	CatalogPath       string
	Location          *time.Location
	LogLevel          slog.Level
	LogFile           string
	SeedDemo          bool
}

// Load reads optional dotenv files (".env" when none are given) and then
// parses configuration from the process environment. Variables already set
// in the environment win over dotenv values. Every invalid key is reported.
func Load(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read dotenv: %w", err)
	}

	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:mindease?mode=memory&cache=shared",
		SessionTTL:        12 * time.Hour,
		MaxSessions:       256,
		GeminiModel:       "gemini-2.5-flash",
		ReplyTimeout:      20 * time.Second,
		RecommendationTTL: 10 * time.Minute,
		Location:          time.Local,
		LogLevel:          slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if value := env("HTTP_PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, prefix+"HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := env("SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	parseDuration("SESSION_TTL", &cfg.SessionTTL, &invalid)
	parseDuration("REPLY_TIMEOUT", &cfg.ReplyTimeout, &invalid)
	parseDuration("RECOMMENDATION_TTL", &cfg.RecommendationTTL, &invalid)

	if value := env("MAX_SESSIONS"); value != "" {
		max, err := strconv.Atoi(value)
		if err != nil || max <= 0 {
			invalid = append(invalid, prefix+"MAX_SESSIONS")
		} else {
			cfg.MaxSessions = max
		}
	}

	cfg.GeminiAPIKey = env("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if model := env("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	cfg.CatalogPath = env("CATALOG_PATH")

	if name := env("TIMEZONE"); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			invalid = append(invalid, prefix+"TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if value := env("LOG_LEVEL"); value != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, prefix+"LOG_LEVEL")
		}
	}
	cfg.LogFile = env("LOG_FILE")

	if value := env("SEED_DEMO"); value != "" {
		seed, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, prefix+"SEED_DEMO")
		} else {
			cfg.SeedDemo = seed
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(prefix + key))
}

func parseDuration(key string, dst *time.Duration, invalid *[]string) {
	value := env(key)
	if value == "" {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		*invalid = append(*invalid, prefix+key)
		return
	}
	*dst = d
}
