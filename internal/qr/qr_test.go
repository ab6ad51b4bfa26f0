package qr

import (
	"bytes"
	"testing"
)

func TestValidToken(t *testing.T) {
	valid := []string{
		"a1b2c3d4-0000-4000-8000-000000000000",
		"A1B2C3D4-0000-4000-8000-000000000000",
	}
	for _, token := range valid {
		if !ValidToken(token) {
			t.Fatalf("expected token %s to be valid", token)
		}
	}

	invalid := []string{
		"not-a-uuid",
		"",
		"a1b2c3d4-0000-4000-8000-00000000000",  // 35 chars
		"a1b2c3d4-0000-4000-8000-0000000000000", // 37 chars
		"a1b2c3d4000040008000000000000000",
		"g1b2c3d4-0000-4000-8000-000000000000",
	}
	for _, token := range invalid {
		if ValidToken(token) {
			t.Fatalf("expected token %q to be invalid", token)
		}
	}
}

func TestNewTokenIsValid(t *testing.T) {
	first := NewToken()
	second := NewToken()
	if !ValidToken(first) || !ValidToken(second) {
		t.Fatalf("expected minted tokens to validate")
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
}

func TestLabelIsPNG(t *testing.T) {
	png, err := Label(NewToken(), 0)
	if err != nil {
		t.Fatalf("label error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("expected PNG output")
	}
}
