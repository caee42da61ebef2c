package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL defines the fallback validity period for bearer tokens.
const DefaultTokenTTL = 365 * 24 * time.Hour

// ErrInvalidToken is wrapped by every verification failure.
var ErrInvalidToken = errors.New("auth: invalid token")

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
	Clock    func() time.Time
}

// Identity is the subject a token is issued for.
type Identity struct {
	ID    string
	Email string
}

// Claims represents the custom claims embedded in issued JWTs.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the subject encoded in the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email}
}

// ExpiresAtTime returns the exp claim, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// JWTService is responsible for issuing and validating JSON Web Tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService constructs a JWTService instance when provided with the required configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &JWTService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL reports the validity period applied to issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the identity and returns it with its expiry.
func (s *JWTService) Issue(id Identity) (string, time.Time, error) {
	if id.ID == "" {
		return "", time.Time{}, errors.New("jwt: user id is required")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		UserID: id.ID,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, claims.ExpiresAt.Time, nil
}

// Verify parses and validates a signed JWT, returning its claims.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token string is empty", ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}

	return &claims, nil
}
