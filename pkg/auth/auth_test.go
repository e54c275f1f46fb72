package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "secret1") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "Alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Name != "Alice" {
		t.Errorf("claims = %+v, want UserID 42 / Name Alice", claims)
	}
	if claims.Issuer != "pinned" {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, "pinned")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}

	// Flip a character in the signature.
	token, err := GenerateToken(1, "A")
	if err != nil {
		t.Fatal(err)
	}
	tampered := token[:len(token)-2] + strings.Map(func(r rune) rune {
		if r == 'a' {
			return 'b'
		}
		return 'a'
	}, token[len(token)-2:])
	if _, err := ValidateToken(tampered); err == nil {
		t.Error("tampered token accepted")
	}
}
