package utils

import (
	"testing"
	"time"

	"github.com/medihub/medihub-api/internal/models"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Generate("abc123", models.RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "abc123" {
		t.Fatalf("expected userId=abc123, got %q", claims.UserID)
	}
	if claims.Role != models.RoleDoctor {
		t.Fatalf("expected role=Doctor, got %q", claims.Role)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Generate("abc", models.RolePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewTokenManager("secret-b", time.Hour).Validate(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)
	token, err := tm.Generate("abc", models.RolePatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tm.Validate(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestTokenManager_EmptySecret(t *testing.T) {
	tm := NewTokenManager("", time.Hour)
	if _, err := tm.Generate("abc", models.RolePatient); err == nil {
		t.Fatal("expected an error with no secret configured")
	}
}

func TestCookieNameForRole(t *testing.T) {
	cases := map[string]string{
		models.RolePatient: "patientToken",
		models.RoleDoctor:  "doctorToken",
		models.RoleAdmin:   "adminToken",
	}
	for role, want := range cases {
		if got := CookieNameForRole(role); got != want {
			t.Fatalf("%s: expected %q, got %q", role, want, got)
		}
	}
}
