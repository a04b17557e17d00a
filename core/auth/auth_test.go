package auth

import (
	"strings"
	"testing"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier("admin", "admin123")

	if !v.Verify("admin", "admin123") {
		t.Fatal("Verify rejected the configured credentials")
	}
	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "admin123"},
		{"", ""},
		{"admin", ""},
	} {
		if v.Verify(tc.user, tc.pass) {
			t.Errorf("Verify(%q, %q) = true, want false", tc.user, tc.pass)
		}
	}
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	v := NewBcryptVerifier("admin", hash)

	if !v.Verify("admin", "s3cret") {
		t.Fatal("Verify rejected the hashed password")
	}
	if v.Verify("admin", "wrong") {
		t.Fatal("Verify accepted a wrong password")
	}
	if v.Verify("other", "s3cret") {
		t.Fatal("Verify accepted a wrong username")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Generate("admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q is not a JWT", token)
	}

	username, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if username != "admin" {
		t.Fatalf("Validate returned username %q, want admin", username)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Generate("admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewTokenIssuer("secret-b").Validate(token); err == nil {
		t.Fatal("Validate accepted a token signed with a different secret")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	if _, err := NewTokenIssuer("secret").Validate("not.a.token"); err == nil {
		t.Fatal("Validate accepted garbage")
	}
}
