package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/pkg/crypto"
)

type accountFixture struct {
	svc     *AccountService
	jwt     *iauth.JWTService
	revoked *iauth.Revocations
	now     time.Time
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret: "test-secret",
		Clock:  func() time.Time { return now },
	})
	require.NoError(t, err)

	revoked := iauth.NewRevocations(nil)
	svc, err := NewAccountService(AccountServiceConfig{
		Hasher:      crypto.NewHasher(bcrypt.MinCost),
		Tokens:      jwtSvc,
		Revocations: revoked,
	})
	require.NoError(t, err)

	return &accountFixture{svc: svc, jwt: jwtSvc, revoked: revoked, now: now}
}
