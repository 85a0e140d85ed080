// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/admin.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// --------------------------------------------------------------------------
// Table and collection names, matching schema.sql
// --------------------------------------------------------------------------

const (
	PlayersTable           = "players"
	FantasyPlayersTable    = "fantasy_players"
	PlayerStatsTable       = "player_stats"
	MatchesTable           = "matches"
	HistoricalMatchesTable = "historical_matches"
)

// Mongo collection names keep the camelCase used by the document store.
const (
	PlayersCollection           = "players"
	FantasyPlayersCollection    = "fantasyPlayers"
	PlayerStatsCollection       = "playerStats"
	MatchesCollection           = "matches"
	HistoricalMatchesCollection = "historicalMatches"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// CurrentSeason is the default season for imports.
const CurrentSeason = 2025

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Store
	Backend string `envconfig:"STORE_BACKEND" default:"postgres"`

	// Postgres
	DatabaseURL    string        `envconfig:"VFL_DATABASE_URL"`
	DBPoolMinConns int           `envconfig:"DB_POOL_MIN_CONNS" default:"2"`
	DBPoolMaxConns int           `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBPoolMaxLife  time.Duration `envconfig:"DB_POOL_MAX_LIFE" default:"30m"`

	// Mongo
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"vfl"`

	// Reconciliation
	BatchLimit    int           `envconfig:"BATCH_LIMIT" default:"500"`
	AuditInterval time.Duration `envconfig:"AUDIT_INTERVAL" default:"1h"`

	// API server
	APIHost     string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort     int    `envconfig:"API_PORT" default:"8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // development, staging, production
	Debug       bool   `envconfig:"DEBUG" default:"false"`

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	// Rate limiting
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`

	// Cache
	CacheEnabled bool `envconfig:"CACHE_ENABLED" default:"true"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks backend-specific requirements.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("VFL_DATABASE_URL or DATABASE_URL must be set")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI must be set when STORE_BACKEND=mongo")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want postgres, mongo or memory)", c.Backend)
	}
	if c.BatchLimit < 1 {
		return fmt.Errorf("BATCH_LIMIT must be positive, got %d", c.BatchLimit)
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
