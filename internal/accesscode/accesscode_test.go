package accesscode

import (
	"strconv"
	"testing"
)

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code is not numeric: %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code out of range: %d", n)
		}
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if len(token) != 32 {
		t.Errorf("expected 32 hex characters (128 bits), got %d", len(token))
	}

	other, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == other {
		t.Errorf("two draws produced the same token")
	}
}

func TestHasherRequiresSecret(t *testing.T) {
	if _, err := NewHasher(""); err == nil {
		t.Errorf("expected error for empty secret")
	}
}

func TestHashDeterministic(t *testing.T) {
	h, err := NewHasher("test-secret")
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	digest := h.Hash(token)
	if digest != h.Hash(token) {
		t.Errorf("same token hashed to different digests")
	}
	if !h.Verify(token, digest) {
		t.Errorf("Verify rejected the original token")
	}

	// Any single-character mutation must fail verification.
	mutated := []byte(token)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	if h.Verify(string(mutated), digest) {
		t.Errorf("Verify accepted a mutated token")
	}
}

func TestDifferentSecretsDiffer(t *testing.T) {
	h1, _ := NewHasher("secret-one")
	h2, _ := NewHasher("secret-two")

	if h1.Hash("same-token") == h2.Hash("same-token") {
		t.Errorf("different secrets produced the same digest")
	}
}
