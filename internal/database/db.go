package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config contains relational database connection options.
type Config struct {
	Driver string
	DSN    string // Connection string; takes precedence over Path
	Path   string // SQLite database path when Driver == sqlite

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// Open initialises a gorm.DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "postgres"
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "postgres", "postgresql":
		db, err = openPostgres(cfg)
	case "sqlite":
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := applyPool(db, cfg); err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	return sqlDB.Close()
}

func gormConfig(cfg Config) *gorm.Config {
	level := cfg.LogLevel
	if level == 0 {
		level = logger.Silent
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

func applyPool(db *gorm.DB, cfg Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return nil
}
