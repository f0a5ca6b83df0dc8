package config

import (
	"os"
	"path/filepath"
	"testing"
)

func secretFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestResolveSecretEnvOnly(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV_ONLY", "env-value")

	value, err := ResolveSecret("TEST_SECRET_ENV_ONLY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "env-value" {
		t.Errorf("got %q, want %q", value, "env-value")
	}
}

func TestResolveSecretFromFile(t *testing.T) {
	t.Setenv("TEST_SECRET_FROM_FILE_FILE", secretFile(t, "file-value\n"))

	value, err := ResolveSecret("TEST_SECRET_FROM_FILE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "file-value" {
		t.Errorf("got %q, want %q (trailing newline should be trimmed)", value, "file-value")
	}
}

func TestResolveSecretFileWinsOverEnv(t *testing.T) {
	t.Setenv("TEST_SECRET_PRECEDENCE", "env-value")
	t.Setenv("TEST_SECRET_PRECEDENCE_FILE", secretFile(t, "file-value"))

	value, err := ResolveSecret("TEST_SECRET_PRECEDENCE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "file-value" {
		t.Errorf("got %q, want %q (file should win over env)", value, "file-value")
	}
}

func TestResolveSecretNeitherSet(t *testing.T) {
	os.Unsetenv("TEST_SECRET_NEITHER")
	os.Unsetenv("TEST_SECRET_NEITHER_FILE")

	value, err := ResolveSecret("TEST_SECRET_NEITHER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "" {
		t.Errorf("got %q, want empty string", value)
	}
}

func TestResolveSecretFileNotFound(t *testing.T) {
	t.Setenv("TEST_SECRET_MISSING_FILE", "/nonexistent/path/to/secret")

	if _, err := ResolveSecret("TEST_SECRET_MISSING"); err == nil {
		t.Error("expected error when file does not exist")
	}
}

func TestResolveSecretTrimsWhitespace(t *testing.T) {
	t.Setenv("TEST_SECRET_WS_FILE", secretFile(t, "  secret-value  \n\n"))

	value, err := ResolveSecret("TEST_SECRET_WS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "secret-value" {
		t.Errorf("got %q, want %q", value, "secret-value")
	}
}
