package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/internal/store"
	apperrors "github.com/charlesng35/accountd/pkg/errors"
	"github.com/charlesng35/accountd/pkg/logger"
)

// UpdateUserInput enumerates mutable user attributes. Password is stored as
// supplied, without hashing.
type UpdateUserInput struct {
	Email    *string
	Username *string
	Password *string
	Verified *bool
}

// DirectoryService exposes CRUD over user records.
type DirectoryService struct {
	log *zap.Logger
}

// NewDirectoryService constructs a DirectoryService instance.
func NewDirectoryService() *DirectoryService {
	return &DirectoryService{log: logger.WithModule("directory")}
}

// List returns every user in the store.
func (s *DirectoryService) List(ctx context.Context, st store.Store) ([]models.User, error) {
	users, err := st.ListAll(ensureContext(ctx))
	if err != nil {
		return nil, s.internal("list users", "Error retrieving users", err)
	}
	return users, nil
}

// Get returns a single user by id.
func (s *DirectoryService) Get(ctx context.Context, st store.Store, id string) (*models.User, error) {
	user, err := st.FindByID(ensureContext(ctx), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, s.internal("get user", "Error retrieving user", err)
	}
	return user, nil
}

// Update overwrites the supplied subset of fields. Marking a user verified
// clears any pending verification code.
func (s *DirectoryService) Update(ctx context.Context, st store.Store, id string, input UpdateUserInput) (*models.User, error) {
	update := store.UserUpdate{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: input.Password,
		Verified:     input.Verified,
	}
	if input.Verified != nil && *input.Verified {
		update.ClearCode = true
	}

	user, err := st.Update(ensureContext(ctx), id, update)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, store.ErrConflict):
		return nil, ErrAccountConflict
	case err != nil:
		return nil, s.internal("update user", "Error updating user", err)
	}
	return user, nil
}

// Delete removes a single user.
func (s *DirectoryService) Delete(ctx context.Context, st store.Store, id string) error {
	err := st.Delete(ensureContext(ctx), id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return s.internal("delete user", "Error deleting user", err)
	}
	return nil
}

// DeleteAll removes every user in the store.
func (s *DirectoryService) DeleteAll(ctx context.Context, st store.Store) error {
	if err := st.DeleteAll(ensureContext(ctx)); err != nil {
		return s.internal("delete all users", "Error deleting users", err)
	}
	return nil
}

func (s *DirectoryService) internal(op, msg string, err error) error {
	s.log.Warn("directory operation failed", zap.String("op", op), zap.Error(err))
	return apperrors.Wrap(err, msg)
}
