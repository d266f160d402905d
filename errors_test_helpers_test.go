package dbconn

import (
	"errors"
	"strings"
	"testing"
)

func assertNoSecretLeak(t *testing.T, msg, secret string) {
	t.Helper()

	if secret != "" && strings.Contains(msg, secret) {
		t.Fatalf("error leaked secret: %q", msg)
	}
	if strings.Contains(strings.ToLower(msg), "password=") {
		t.Fatalf("error leaked password keyword: %q", msg)
	}
}

func assertConnectionErrorWraps(t *testing.T, err error, want error) {
	t.Helper()

	if !errors.Is(err, want) {
		t.Fatalf("expected errors.Is to match %v, got %v", want, err)
	}
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectionError wrapper, got %T", err)
	}
}
