package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

var backends = []string{BackendMemory, BackendFile, BackendPostgres}

type BestTime struct {
	Backend string   `json:"backend"`
	Path    string   `json:"path"`
	Timeout Duration `json:"timeout"`
}

type Token struct {
	Secret   string   `json:"secret"`
	Lifetime Duration `json:"lifetime"`
}

type Log struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

type Config struct {
	Mode           string           `json:"mode"`
	Addr           string           `json:"addr"`
	AllowedOrigins []string         `json:"allowed_origins"`
	Board          mines.GameParams `json:"board"`
	TickInterval   Duration         `json:"tick_interval"`
	BestTime       BestTime         `json:"best_time"`
	Postgres       Postgres         `json:"postgres"`
	Token          Token            `json:"token"`
	Log            Log              `json:"log"`
	SnapshotsDir   string           `json:"snapshots_dir"`
}

func Default() *Config {
	return &Config{
		Mode:         "development",
		Addr:         ":8080",
		Board:        mines.DefaultParams,
		TickInterval: Duration{time.Second},
		BestTime: BestTime{
			Backend: BackendFile,
			Path:    "besttime.gob",
			Timeout: Duration{5 * time.Second},
		},
		Postgres: Postgres{Port: 5432},
		Token:    Token{Lifetime: Duration{24 * time.Hour}},
		Log: Log{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// ReadConfig loads path over the defaults and applies DATABASE_URL and
// TOKEN_SECRET from the environment. An empty path yields the defaults.
func ReadConfig(path string) (*Config, error) {
	config := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, config); err != nil {
			return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
		}
	}
	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	if url, ok := os.LookupEnv("DATABASE_URL"); ok {
		c.Postgres.url = url
	}
	if secret, ok := os.LookupEnv("TOKEN_SECRET"); ok {
		c.Token.Secret = secret
	}
}

func (c Config) Validate() error {
	if err := c.Board.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if c.TickInterval.Duration <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if !slices.Contains(backends, c.BestTime.Backend) {
		return fmt.Errorf("unknown best_time backend %q", c.BestTime.Backend)
	}
	if c.BestTime.Backend == BackendFile && c.BestTime.Path == "" {
		return fmt.Errorf("best_time.path is required by the file backend")
	}
	if c.BestTime.Backend == BackendPostgres {
		if _, err := c.Postgres.URL(); err != nil {
			return err
		}
	}
	if c.Production() && c.Token.Secret == "" {
		return fmt.Errorf("token secret must be set in production")
	}
	if c.Token.Lifetime.Duration <= 0 {
		return fmt.Errorf("token lifetime must be positive")
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":              c.Mode,
		"addr":              c.Addr,
		"allowed_origins":   c.AllowedOrigins,
		"board":             c.Board.Key(),
		"tick_interval":     c.TickInterval.String(),
		"best_time_backend": c.BestTime.Backend,
		"best_time_path":    c.BestTime.Path,
		"best_time_timeout": c.BestTime.Timeout.String(),
		"pg_host":           c.Postgres.Host,
		"pg_port":           c.Postgres.Port,
		"pg_user":           c.Postgres.User,
		"pg_db_name":        c.Postgres.DbName,
		"pg_from_env":       c.Postgres.url != "",
		"token_lifetime":    c.Token.Lifetime.String(),
		"log_level":         c.Log.Level,
		"log_file":          c.Log.File,
		"snapshots_dir":     c.SnapshotsDir,
	}
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

// LogLevel is the configured level, or Debug in development and Info in
// production when none is set.
func (c Config) LogLevel() logrus.Level {
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil && c.Log.Level != "" {
		return level
	}
	if c.Development() {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
