package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost matches the work factor accounts were historically hashed with.
const DefaultPasswordCost = 10

// MaxPasswordBytes is the longest input bcrypt consumes. Longer passwords are
// truncated, so only their first MaxPasswordBytes bytes matter.
const MaxPasswordBytes = 72

const (
	verificationCodeMin  = 100000
	verificationCodeSpan = 900000
)

// ErrEmptyPassword is returned when hashing an empty plaintext.
var ErrEmptyPassword = errors.New("crypto: password must not be empty")

// Hasher produces and checks salted bcrypt digests with a fixed work factor.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, clamped to the range bcrypt accepts.
// A zero cost selects DefaultPasswordCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = DefaultPasswordCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a bcrypt hash of the supplied password. Each call draws a fresh salt.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword(truncate(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares the hashed password with the plaintext candidate. Malformed
// digests simply fail to match.
func (h *Hasher) Verify(hashedPassword, password string) bool {
	return VerifyPassword(hashedPassword, password)
}

// HashPassword returns a bcrypt hash using DefaultPasswordCost.
func HashPassword(password string) (string, error) {
	return NewHasher(DefaultPasswordCost).Hash(password)
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// GenerateVerificationCode returns a uniformly random six digit code in [100000, 999999].
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+verificationCodeMin, 10), nil
}
