package relational

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// createUsersTable mirrors the table the service has always used, so existing
// PostgreSQL databases are adopted untouched.
const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	email VARCHAR(255) UNIQUE NOT NULL,
	username VARCHAR(255) UNIQUE NOT NULL,
	password VARCHAR(255) NOT NULL,
	verified BOOLEAN DEFAULT false,
	verification_code VARCHAR(255),
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
)`

// userRow is the gorm mapping of the users table.
type userRow struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Email            string    `gorm:"column:email;size:255;uniqueIndex;not null"`
	Username         string    `gorm:"column:username;size:255;uniqueIndex;not null"`
	Password         string    `gorm:"column:password;size:255;not null"`
	Verified         bool      `gorm:"column:verified;not null;default:false"`
	VerificationCode *string   `gorm:"column:verification_code;size:255"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (userRow) TableName() string {
	return "users"
}

// InitSchema creates the users table when absent. It is idempotent and must run
// once before the store serves queries.
func InitSchema(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("relational: init schema: nil database handle")
	}
	tx := db.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		if err := tx.Exec(createUsersTable).Error; err != nil {
			return fmt.Errorf("relational: init schema: %w", err)
		}
		return nil
	}
	if err := tx.AutoMigrate(&userRow{}); err != nil {
		return fmt.Errorf("relational: init schema: %w", err)
	}
	return nil
}
