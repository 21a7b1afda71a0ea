package database

import (
	"net"
	"net/url"
	"strings"
	"time"
)

// DefaultMigrationsDir is resolved against the working directory.
const DefaultMigrationsDir = "migrations"

// Config holds database connection settings. An empty Host disables the database.
type Config struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	Migrations     string `yaml:"migrations" envconfig:"DB_MIGRATIONS"`
	// ReadyTimeout bounds how long startup waits for the server to accept connections.
	ReadyTimeout time.Duration `yaml:"ready_timeout" envconfig:"DB_READY_TIMEOUT"`
}

// Enabled reports whether a database is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// Normalize fills defaults for an enabled database.
func (c *Config) Normalize() {
	if !c.Enabled() {
		return
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 4
	}
	if c.Migrations == "" {
		c.Migrations = DefaultMigrationsDir
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 30 * time.Second
	}
}

// URL renders the settings as a postgres:// URL with escaped credentials.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Redacted is URL with the password masked, for logs.
func (c Config) Redacted() string {
	u, err := url.Parse(c.URL())
	if err != nil {
		return c.Host
	}
	return u.Redacted()
}
