// Package store defines the Credential Store contract shared by the document
// and relational backends.
package store

import (
	"context"
	"errors"

	"github.com/charlesng35/accountd/internal/models"
)

var (
	// ErrNotFound indicates no record matched the lookup or mutation.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict indicates a unique field (email or username) is already taken.
	ErrConflict = errors.New("store: unique constraint violated")
	// ErrUnknownBackend indicates a backend selector with no registered store.
	ErrUnknownBackend = errors.New("store: unknown backend")
)

// Backend names accepted in request paths.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// NewUser carries the fields required to insert an account.
type NewUser struct {
	Email            string
	Username         string
	PasswordHash     string
	VerificationCode string
}

// UserUpdate lists fields to overwrite. Nil pointers are left untouched.
type UserUpdate struct {
	Email        *string
	Username     *string
	PasswordHash *string
	Verified     *bool
	// ClearCode sets the verification code to null. It wins over VerificationCode.
	ClearCode        bool
	VerificationCode *string
}

// Empty reports whether the update would change nothing but updatedAt.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Username == nil && u.PasswordHash == nil &&
		u.Verified == nil && !u.ClearCode && u.VerificationCode == nil
}

// Store persists user records. Implementations must be safe for concurrent use
// and refresh updatedAt on every mutation.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, in NewUser) (*models.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	ListAll(ctx context.Context) ([]models.User, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
