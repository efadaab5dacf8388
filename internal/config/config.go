package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port int
	Env  string

	LogLevel string

	// AllowedOrigins is a comma separated CORS allow list.
	AllowedOrigins []string
	// CreateRate limits POST /drafts per second, with CreateBurst headroom.
	CreateRate  int
	CreateBurst int

	// DatabaseURL enables the Postgres transcript archive when set.
	DatabaseURL string

	// Draft inputs
	HeroConfigPath    string
	StatsSnapshotPath string
	GameMode          string
	Seed              uint64
	// StatsCacheTTL is how often cached player and matchup stats are
	// dropped. Zero keeps them for the life of the process.
	StatsCacheTTL time.Duration
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory when one exists. Variables already set in the
// environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Port:              getEnvInt("PORT", 8080),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:*", "http://127.0.0.1:*"}),
		CreateRate:        getEnvInt("CREATE_RATE", 2),
		CreateBurst:       getEnvInt("CREATE_BURST", 10),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		HeroConfigPath:    getEnv("HERO_CONFIG_PATH", "configs/hero_config.toml"),
		StatsSnapshotPath: getEnv("STATS_SNAPSHOT_PATH", "configs/stats_snapshot.json"),
		GameMode:          getEnv("GAME_MODE", "Storm League"),
		Seed:              getEnvUint("DRAFT_SEED", 1),
		StatsCacheTTL:     getEnvDuration("STATS_CACHE_TTL", 10*time.Minute),
	}, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if u, err := strconv.ParseUint(value, 10, 64); err == nil {
			return u
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
