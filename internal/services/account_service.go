package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/pkg/crypto"
	apperrors "github.com/charlesng35/accountd/pkg/errors"
	"github.com/charlesng35/accountd/pkg/logger"
)

// PasswordHasher hashes and checks plaintext passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService issues and checks bearer tokens.
type TokenService interface {
	Issue(id iauth.Identity) (string, time.Time, error)
	Verify(token string) (*iauth.Claims, error)
}

// TokenRevoker records signed-out tokens.
type TokenRevoker interface {
	Revoke(token string, expiresAt time.Time)
}

// AccountServiceConfig wires the collaborators of an AccountService.
type AccountServiceConfig struct {
	Hasher      PasswordHasher
	Tokens      TokenService
	Revocations TokenRevoker
	// NewCode generates verification codes. Defaults to crypto.GenerateVerificationCode.
	NewCode func() (string, error)
}

// SignupInput carries the fields accepted at signup.
type SignupInput struct {
	Email    string
	Username string
	Password string
}

// AccountService implements signup, login, verification, password reset and
// sign-out against whichever store the caller selected.
type AccountService struct {
	hasher  PasswordHasher
	tokens  TokenService
	revoked TokenRevoker
	newCode func() (string, error)
	log     *zap.Logger

	// decoy is compared against when the email is unknown so both login
	// failures cost one bcrypt comparison.
	decoy string
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(cfg AccountServiceConfig) (*AccountService, error) {
	if cfg.Tokens == nil {
		return nil, errors.New("account service: token service is required")
	}
	if cfg.Revocations == nil {
		return nil, errors.New("account service: revocation registry is required")
	}
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = crypto.NewHasher(crypto.DefaultPasswordCost)
	}
	newCode := cfg.NewCode
	if newCode == nil {
		newCode = crypto.GenerateVerificationCode
	}

	decoy, err := hasher.Hash("accountd-decoy-password")
	if err != nil {
		return nil, fmt.Errorf("account service: prepare decoy hash: %w", err)
	}

	return &AccountService{
		hasher:  hasher,
		tokens:  cfg.Tokens,
		revoked: cfg.Revocations,
		newCode: newCode,
		log:     logger.WithModule("accounts"),
		decoy:   decoy,
	}, nil
}

// Signup creates an unverified account and returns its verification code.
func (s *AccountService) Signup(ctx context.Context, st store.Store, input SignupInput) (string, error) {
	ctx = ensureContext(ctx)

	if _, err := st.FindByEmail(ctx, input.Email); err == nil {
		return "", ErrEmailExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", s.internal("signup lookup", "Error creating user", err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", s.internal("hash password", "Error creating user", err)
	}
	code, err := s.newCode()
	if err != nil {
		return "", s.internal("generate code", "Error creating user", err)
	}

	_, err = st.Insert(ctx, store.NewUser{
		Email:            input.Email,
		Username:         input.Username,
		PasswordHash:     hashed,
		VerificationCode: code,
	})
	if errors.Is(err, store.ErrConflict) {
		// A concurrent signup may have taken the email after the lookup above.
		if _, lookupErr := st.FindByEmail(ctx, input.Email); lookupErr == nil {
			return "", ErrEmailExists
		}
		return "", ErrUsernameExists
	}
	if err != nil {
		return "", s.internal("insert user", "Error creating user", err)
	}
	return code, nil
}

// Login checks the password and issues a token. Unverified accounts may log in.
func (s *AccountService) Login(ctx context.Context, st store.Store, email, password string) (*models.User, string, error) {
	ctx = ensureContext(ctx)

	user, err := st.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.hasher.Verify(s.decoy, password)
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", s.internal("login lookup", "Error logging in", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(iauth.Identity{ID: user.ID, Email: user.Email})
	if err != nil {
		return nil, "", s.internal("issue token", "Error logging in", err)
	}
	return user, token, nil
}

// VerifyAccount marks the account verified when code matches the stored one.
func (s *AccountService) VerifyAccount(ctx context.Context, st store.Store, email, code string) error {
	ctx = ensureContext(ctx)

	user, err := st.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.ErrInvalidCode
	}
	if err != nil {
		return s.internal("verify lookup", "Error verifying user", err)
	}
	if !user.MatchesCode(code) {
		return apperrors.ErrInvalidCode
	}

	verified := true
	_, err = st.Update(ctx, user.ID, store.UserUpdate{Verified: &verified, ClearCode: true})
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.ErrInvalidCode
	}
	if err != nil {
		return s.internal("mark verified", "Error verifying user", err)
	}
	return nil
}

// CheckEmailExists returns the email when an account holds it.
func (s *AccountService) CheckEmailExists(ctx context.Context, st store.Store, email string) (string, error) {
	ctx = ensureContext(ctx)

	if _, err := st.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrEmailNotFound
		}
		return "", s.internal("email lookup", "Error checking email", err)
	}
	return email, nil
}

// ResetPassword replaces the password of the account holding email. Callers
// are not asked to prove ownership.
func (s *AccountService) ResetPassword(ctx context.Context, st store.Store, email, newPassword string) error {
	ctx = ensureContext(ctx)

	user, err := st.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEmailUnknown
	}
	if err != nil {
		return s.internal("reset lookup", "Error updating password", err)
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.internal("hash password", "Error updating password", err)
	}
	if _, err := st.Update(ctx, user.ID, store.UserUpdate{PasswordHash: &hashed}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEmailUnknown
		}
		return s.internal("store password", "Error updating password", err)
	}
	return nil
}

// SignOut revokes token after checking the caller names the identity it was
// issued for. The token stays revoked until its own expiry.
func (s *AccountService) SignOut(ctx context.Context, token, claimedID, claimedEmail string) error {
	if token == "" {
		return ErrSignOutNoToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return apperrors.ErrInvalidToken.WithInternal(err)
	}

	claimedID = strings.TrimSpace(claimedID)
	if claimedID == "" || claimedEmail == "" {
		return apperrors.ErrMissingFields
	}

	id := claims.Identity()
	if claimedID != id.ID || claimedEmail != id.Email {
		return apperrors.ErrIdentityMismatch
	}

	s.revoked.Revoke(token, claims.ExpiresAtTime())
	return nil
}

func (s *AccountService) internal(op, msg string, err error) error {
	s.log.Warn("account operation failed", zap.String("op", op), zap.Error(err))
	return apperrors.Wrap(err, msg)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
