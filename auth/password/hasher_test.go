package password

import (
	"errors"
	"strings"
	"testing"
)

func hashers() map[string]Hasher {
	return map[string]Hasher{
		"bcrypt":   NewBcryptHasher(WithCost(4)),
		"argon2id": NewArgon2Hasher(WithArgon2Memory(8*1024), WithArgon2Threads(1)),
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("Secret#123")
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			if strings.Contains(hash, "Secret#123") {
				t.Fatal("hash contains the plain secret")
			}
			if err := h.Verify("Secret#123", hash); err != nil {
				t.Errorf("Verify with right secret: %v", err)
			}
			if err := h.Verify("Secret#124", hash); !errors.Is(err, ErrMismatch) {
				t.Errorf("Verify with wrong secret: expected ErrMismatch, got %v", err)
			}
		})
	}
}

func TestHasher_Salted(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			a, _ := h.Hash("Secret#123")
			b, _ := h.Hash("Secret#123")
			if a == b {
				t.Error("expected two hashes of the same secret to differ")
			}
		})
	}
}

func TestHasher_RejectsEmpty(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			if _, err := h.Hash(""); !errors.Is(err, ErrEmpty) {
				t.Errorf("expected ErrEmpty, got %v", err)
			}
		})
	}
}

func TestBcrypt_TooLong(t *testing.T) {
	if _, err := NewBcryptHasher(WithCost(4)).Hash(strings.Repeat("a", 73)); !errors.Is(err, ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}
}

func TestHasher_MalformedHash(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			if err := h.Verify("Secret#123", "not-a-hash"); !errors.Is(err, ErrMismatch) {
				t.Errorf("expected ErrMismatch for malformed hash, got %v", err)
			}
		})
	}
}

func TestNewHasher_FromConfig(t *testing.T) {
	h := NewHasher(Config{})
	b, ok := h.(*BcryptHasher)
	if !ok {
		t.Fatalf("expected bcrypt by default, got %T", h)
	}
	if b.Cost() != DefaultBcryptCost {
		t.Errorf("expected cost %d, got %d", DefaultBcryptCost, b.Cost())
	}

	if _, ok := NewHasher(Config{Algorithm: AlgorithmArgon2id}).(*Argon2Hasher); !ok {
		t.Error("expected argon2id hasher")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Algorithm: "md5"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
	cfg = Config{BcryptCost: 40}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bcrypt cost out of range")
	}
}
