package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// defaultConfigFile is read when no explicit config path is given and it exists.
const defaultConfigFile = ".env"

// Config captures all runtime configuration derived from a dotenv file and environment variables.
type Config struct {
	Port     string `env:"PORT"`
	LogLevel string `env:"LOG_LEVEL"`

	// DBURL wins over the DATABASE_* parts when set.
	DBURL            string `env:"DB_URL"`
	DatabaseHost     string `env:"DATABASE_HOST"`
	DatabasePort     int    `env:"DATABASE_PORT"`
	DatabaseUser     string `env:"DATABASE_USER"`
	DatabasePassword string `env:"DATABASE_PASSWORD"`
	DatabaseName     string `env:"DATABASE_NAME"`

	ReadTimeoutSecs  int `env:"SERVER_READ_TIMEOUT"`
	WriteTimeoutSecs int `env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeoutSecs  int `env:"SERVER_IDLE_TIMEOUT"`

	DBMaxConns              int  `env:"DB_MAX_CONNS"`
	DBMinConns              int  `env:"DB_MIN_CONNS"`
	DBMaxIdleSecs           int  `env:"DB_MAX_CONN_IDLE_SECS"`
	DBMaxLifeSecs           int  `env:"DB_MAX_CONN_LIFETIME_SECS"`
	DBConnTimeoutSecs       int  `env:"DB_CONN_TIMEOUT_SECS"`
	DBStatementCache        int  `env:"DB_STATEMENT_CACHE_CAPACITY"`
	DBConnectRetries        int  `env:"DB_CONNECT_RETRIES"`
	DBConnectRetryDelaySecs int  `env:"DB_CONNECT_RETRY_DELAY_SECS"`
	DBBootstrapSchema       bool `env:"DB_BOOTSTRAP_SCHEMA"`

	MoviesDefaultLimit int `env:"MOVIES_DEFAULT_LIMIT"`
	MoviesMaxLimit     int `env:"MOVIES_MAX_LIMIT"`

	// RedisURL enables the single-movie cache when set.
	RedisURL          string `env:"REDIS_URL"`
	MovieCacheTTLSecs int    `env:"MOVIE_CACHE_TTL_SECS"`
}

func (c *Config) initDefaults() {
	c.Port = "8080"
	c.LogLevel = "info"
	c.DatabaseHost = "db"
	c.DatabasePort = 5432
	c.DatabaseUser = "imdb_user"
	c.DatabasePassword = "imdb_pass"
	c.DatabaseName = "imdb_db"
	c.ReadTimeoutSecs = 15
	c.WriteTimeoutSecs = 15
	c.IdleTimeoutSecs = 60
	c.DBMaxConns = 20
	c.DBMinConns = 2
	c.DBMaxIdleSecs = 300
	c.DBMaxLifeSecs = 3600
	c.DBConnTimeoutSecs = 10
	c.DBStatementCache = 256
	c.DBConnectRetries = 10
	c.DBConnectRetryDelaySecs = 2
	c.DBBootstrapSchema = true
	c.MoviesDefaultLimit = 20
	c.MoviesMaxLimit = 100
	c.MovieCacheTTLSecs = 300
}

// Load builds the configuration from defaults, then the dotenv file at path (or ./.env when
// path is empty and the file exists), then environment variables, and validates the result.
func Load(path string) (Config, error) {
	var cfg Config
	cfg.initDefaults()

	if err := cfg.parseConfigFile(path); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) parseConfigFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return nil
		}
		path = defaultConfigFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := env.ParseWithOptions(c, env.Options{Environment: values}); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.DBURL == "" && (c.DatabaseHost == "" || c.DatabaseName == "") {
		return errors.New("DB_URL or DATABASE_HOST and DATABASE_NAME are required")
	}
	if c.DatabasePort <= 0 || c.DatabasePort > 65535 {
		return errors.New("DATABASE_PORT must be a valid port")
	}
	if c.DBMaxConns <= 0 {
		return errors.New("DB_MAX_CONNS must be positive")
	}
	if c.DBMinConns < 0 {
		return errors.New("DB_MIN_CONNS must be non-negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return errors.New("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.DBStatementCache < 0 {
		return errors.New("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if c.DBConnectRetries < 1 {
		return errors.New("DB_CONNECT_RETRIES must be at least 1")
	}
	if c.DBConnectRetryDelaySecs < 0 {
		return errors.New("DB_CONNECT_RETRY_DELAY_SECS must be non-negative")
	}
	if c.MoviesDefaultLimit < 1 {
		return errors.New("MOVIES_DEFAULT_LIMIT must be positive")
	}
	if c.MoviesMaxLimit < c.MoviesDefaultLimit {
		return errors.New("MOVIES_MAX_LIMIT cannot be lower than MOVIES_DEFAULT_LIMIT")
	}
	if c.MovieCacheTTLSecs < 0 {
		return errors.New("MOVIE_CACHE_TTL_SECS must be non-negative")
	}
	return nil
}

// DatabaseURL returns DB_URL, or a postgres URL composed from the DATABASE_* settings.
func (c Config) DatabaseURL() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:   net.JoinHostPort(c.DatabaseHost, strconv.Itoa(c.DatabasePort)),
		Path:   "/" + c.DatabaseName,
	}
	return u.String()
}
