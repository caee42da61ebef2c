package app

import (
	"github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/pkg/crypto"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}

	return auth.JWTConfig{
		Secret:   c.JWT.Secret,
		TokenTTL: ttl,
	}
}

// PasswordHasher builds the bcrypt hasher for the configured cost.
func (c AuthConfig) PasswordHasher() *crypto.Hasher {
	return crypto.NewHasher(c.Password.Cost)
}

// SweepSchedule returns the cron spec for the revocation sweep.
func (c AuthConfig) SweepSchedule() string {
	if c.Revocation.SweepSchedule == "" {
		return "@every 10m"
	}
	return c.Revocation.SweepSchedule
}
