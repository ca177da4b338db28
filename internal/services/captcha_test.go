package services

import (
	"context"
	"testing"
)

func TestVerifyRecaptcha_SkipsWhenUnconfigured(t *testing.T) {
	ok, err := VerifyRecaptcha(context.Background(), "", "any-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("verification must pass when no secret is configured")
	}
}

func TestVerifyRecaptcha_EmptyTokenFails(t *testing.T) {
	ok, err := VerifyRecaptcha(context.Background(), "some-secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("an empty token must not verify")
	}
}
