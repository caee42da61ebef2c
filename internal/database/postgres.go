package database

import (
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := postgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), gormConfig(cfg))
}

// postgresDSN accepts either a postgres:// URL or a key=value connection string.
func postgresDSN(cfg Config) (string, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return "", errors.New("postgres configuration requires a connection string")
	}
	return dsn, nil
}
