// apps/go-server/internal/config/config.go
//
// Process configuration loaded from the environment.
// A .env file in the working directory is loaded first (development only;
// real environment variables always win).

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/game"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/team"
)

// Config holds every tunable of the server.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath       string `env:"DB_PATH"` // empty = in-memory store
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"https://pokeapi.co/api/v2/pokemon"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`
	CatalogTries   uint          `env:"CATALOG_RETRIES" envDefault:"3"`

	TeamSize    int `env:"TEAM_SIZE" envDefault:"6"`
	MinID       int `env:"CREATURE_MIN_ID" envDefault:"1"`
	MaxID       int `env:"CREATURE_MAX_ID" envDefault:"898"`
	MaxSequence int `env:"MAX_SEQUENCE" envDefault:"10"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot run a game.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: PORT is empty")
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Rules derives the game rules.
func (c Config) Rules() game.Rules {
	return game.Rules{
		TeamSize:    c.TeamSize,
		MaxSequence: c.MaxSequence,
		MinID:       c.MinID,
		MaxID:       c.MaxID,
	}
}

// IDRange derives the team selector's draw range.
func (c Config) IDRange() team.Range {
	return team.Range{Min: c.MinID, Max: c.MaxID}
}
