package config

import (
	"fmt"
	"os"
	"strings"
)

// DatabaseType selects the checkpointer backend.
type DatabaseType string

const (
	DatabaseSQLite   DatabaseType = "sqlite"
	DatabasePostgres DatabaseType = "postgres"
	DatabaseMySQL    DatabaseType = "mysql"
)

// DatabaseConfig configures thread and feedback persistence.
type DatabaseConfig struct {
	Type DatabaseType

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// Server-based backends.
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DatabaseConfigFromEnv builds DatabaseConfig from environment variables.
func DatabaseConfigFromEnv() DatabaseConfig {
	cfg := DatabaseConfig{
		Type:       DatabaseType(strings.ToLower(os.Getenv("DATABASE_TYPE"))),
		SQLitePath: os.Getenv("SQLITE_DB_PATH"),
	}

	switch cfg.Type {
	case DatabasePostgres:
		cfg.User = os.Getenv("POSTGRES_USER")
		cfg.Password = os.Getenv("POSTGRES_PASSWORD")
		cfg.Host = os.Getenv("POSTGRES_HOST")
		cfg.Port = os.Getenv("POSTGRES_PORT")
		cfg.Name = os.Getenv("POSTGRES_DB")
	case DatabaseMySQL:
		cfg.User = os.Getenv("MYSQL_USER")
		cfg.Password = os.Getenv("MYSQL_PASSWORD")
		cfg.Host = os.Getenv("MYSQL_HOST")
		cfg.Port = os.Getenv("MYSQL_PORT")
		cfg.Name = os.Getenv("MYSQL_DB")
	}
	return cfg
}

// SetDefaults applies default values.
func (c *DatabaseConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = DatabaseSQLite
	}
	if c.Type == DatabaseSQLite && c.SQLitePath == "" {
		c.SQLitePath = "checkpoints.db"
	}
	if c.Port == "" {
		switch c.Type {
		case DatabasePostgres:
			c.Port = "5432"
		case DatabaseMySQL:
			c.Port = "3306"
		}
	}
}

// Validate checks the database configuration. Server-based backends require
// the full credential set; there is no partial fallback.
func (c *DatabaseConfig) Validate() error {
	switch c.Type {
	case DatabaseSQLite:
		return nil
	case DatabasePostgres, DatabaseMySQL:
		var missing []string
		prefix := "POSTGRES"
		if c.Type == DatabaseMySQL {
			prefix = "MYSQL"
		}
		if c.User == "" {
			missing = append(missing, prefix+"_USER")
		}
		if c.Password == "" {
			missing = append(missing, prefix+"_PASSWORD")
		}
		if c.Host == "" {
			missing = append(missing, prefix+"_HOST")
		}
		if c.Name == "" {
			missing = append(missing, prefix+"_DB")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required %s configuration: %s",
				c.Type, strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE %q (valid: sqlite, postgres, mysql)", c.Type)
	}
}

// Driver returns the database/sql driver name.
func (c *DatabaseConfig) Driver() string {
	switch c.Type {
	case DatabasePostgres:
		return "postgres"
	case DatabaseMySQL:
		return "mysql"
	default:
		return "sqlite3"
	}
}

// DSN builds the data source name for database/sql.
func (c *DatabaseConfig) DSN() string {
	switch c.Type {
	case DatabasePostgres:
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case DatabaseMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Name)
	default:
		return c.SQLitePath
	}
}
