package video

import (
	"testing"
	"time"
)

func TestSignUserToken(t *testing.T) {
	token, err := SignUserToken("key-123", "secret", "user-42", time.Hour)
	if err != nil {
		t.Fatalf("SignUserToken: %v", err)
	}

	claims, err := ParseUserToken("secret", token)
	if err != nil {
		t.Fatalf("ParseUserToken: %v", err)
	}
	if claims.Issuer != "key-123" {
		t.Fatalf("issuer = %q, want api key", claims.Issuer)
	}
	if claims.Subject != "user-42" {
		t.Fatalf("subject = %q, want user id", claims.Subject)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("iat/exp claims missing")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("ttl = %v, want 1h", got)
	}
}

func TestSignUserTokenMissingCredentials(t *testing.T) {
	if _, err := SignUserToken("", "secret", "u", time.Hour); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := SignUserToken("key", "", "u", time.Hour); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestParseUserTokenWrongSecret(t *testing.T) {
	token, err := SignUserToken("key-123", "secret", "user-42", time.Hour)
	if err != nil {
		t.Fatalf("SignUserToken: %v", err)
	}
	if _, err := ParseUserToken("other-secret", token); err == nil {
		t.Fatal("expected signature verification failure")
	}
}

func TestParseUserTokenExpired(t *testing.T) {
	token, err := SignUserToken("key-123", "secret", "user-42", -time.Minute)
	if err != nil {
		t.Fatalf("SignUserToken: %v", err)
	}
	if _, err := ParseUserToken("secret", token); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}
