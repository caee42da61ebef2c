package services

import (
	"net/http"

	apperrors "github.com/charlesng35/accountd/pkg/errors"
)

var (
	// ErrEmailExists is returned by signup when the email is already registered.
	ErrEmailExists = apperrors.New("EMAIL_EXISTS", "Email already exists", http.StatusBadRequest)
	// ErrUsernameExists is returned when the username unique constraint rejects a write.
	ErrUsernameExists = apperrors.New("USERNAME_EXISTS", "Username already exists", http.StatusBadRequest)
	// ErrAccountConflict covers an update that collides on email or username.
	ErrAccountConflict = apperrors.ErrConflict.WithMessage("Email or username already exists")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrEmailNotFound is the 404 returned by the email existence check.
	ErrEmailNotFound = apperrors.New("EMAIL_NOT_FOUND", "Email not found", http.StatusNotFound)
	// ErrEmailUnknown is the 400 returned by password reset for an unknown email.
	ErrEmailUnknown = apperrors.New("EMAIL_NOT_FOUND", "Email not found", http.StatusBadRequest)
	// ErrSignOutNoToken is the 400 sign-out returns when no bearer token is sent.
	ErrSignOutNoToken = apperrors.New(apperrors.ErrMissingToken.Code, "No token provided", http.StatusBadRequest)
	// ErrUnknownBackend is returned for a backend selector with no store.
	ErrUnknownBackend = apperrors.New("UNKNOWN_BACKEND", "Unknown backend", http.StatusNotFound)
)
