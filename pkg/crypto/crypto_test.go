package crypto

import (
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if !VerifyPassword(hash, "secret") {
		t.Fatal("expected password verification to succeed")
	}

	if VerifyPassword(hash, "incorrect") {
		t.Fatal("expected password verification to fail")
	}

	if hash == "secret" {
		t.Fatal("expected digest to differ from plaintext")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	second, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct digests for repeated hashing")
	}
	if !h.Verify(first, "pw1") || !h.Verify(second, "pw1") {
		t.Fatal("expected both digests to verify")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-hash", "$2a$10$short"} {
		if VerifyPassword(digest, "secret") {
			t.Fatalf("expected malformed digest %q to fail", digest)
		}
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := NewHasher(0).Hash(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	cases := map[int]int{
		0:   DefaultPasswordCost,
		1:   bcrypt.MinCost,
		12:  12,
		100: bcrypt.MaxCost,
	}
	for in, want := range cases {
		if got := NewHasher(in).Cost(); got != want {
			t.Fatalf("NewHasher(%d).Cost() = %d, want %d", in, got, want)
		}
	}
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateVerificationCode()
		if err != nil {
			t.Fatalf("code error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("expected numeric code, got %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestLongPasswordsAreTruncated(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	long := strings.Repeat("p", 80)

	hash, err := h.Hash(long)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if !h.Verify(hash, long) {
		t.Fatal("expected long password to verify")
	}
	if !h.Verify(hash, long[:MaxPasswordBytes]) {
		t.Fatal("expected bytes past the limit to be ignored")
	}
	if h.Verify(hash, long[:MaxPasswordBytes-1]) {
		t.Fatal("expected a shorter prefix to fail")
	}
}
