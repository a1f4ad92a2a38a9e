package config

import (
	"os"
	"strconv"

	"github.com/chordforge/chordforge-api/internal/models"
)

// Config holds the application configuration
// Note: This is a stateless configuration - the arranger session lives in
// memory, so no database or auth secrets are needed
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Generation defaults applied until the client updates settings
	DefaultTempoBPM float64
	DefaultGenre    models.Genre
	DefaultMood     models.Mood
	DefaultKeyRoot  int // pitch class, 0 = C
	DefaultScale    models.Scale

	// RandomSeed pins the generation random source when non-zero.
	// Leave unset in production for fresh results per process.
	RandomSeed int64
}

func Load() *Config {
	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		Port:            getEnv("PORT", "8080"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		DefaultTempoBPM: getEnvFloat("DEFAULT_TEMPO_BPM", 120),
		DefaultGenre:    models.Genre(getEnv("DEFAULT_GENRE", string(models.GenrePop))),
		DefaultMood:     models.Mood(getEnv("DEFAULT_MOOD", string(models.MoodHappy))),
		DefaultKeyRoot:  getEnvInt("DEFAULT_KEY_ROOT", 0),
		DefaultScale:    models.Scale(getEnv("DEFAULT_SCALE", string(models.ScaleMajor))),
		RandomSeed:      int64(getEnvInt("RANDOM_SEED", 0)),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

// DefaultSettings assembles the initial arranger settings.
func (c *Config) DefaultSettings() models.Settings {
	return models.Settings{
		Key:      models.Key{Root: c.DefaultKeyRoot, Scale: c.DefaultScale},
		TempoBPM: c.DefaultTempoBPM,
		Genre:    c.DefaultGenre,
		Mood:     c.DefaultMood,
	}
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
