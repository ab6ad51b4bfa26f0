package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "secret"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}

func TestRefreshTokens(t *testing.T) {
	first, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	second, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
	if HashToken(first) != HashToken(first) {
		t.Fatalf("expected stable hash")
	}
	if HashToken(first) == HashToken(second) {
		t.Fatalf("expected distinct hashes")
	}
	if HashToken(first) == first {
		t.Fatalf("expected hash to differ from token")
	}
}
