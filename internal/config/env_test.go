package config

import (
	"errors"
	"strings"
	"testing"
)

func TestFirstEnv_OrderWins(t *testing.T) {
	t.Setenv("FS_TEST_A", "first")
	t.Setenv("FS_TEST_B", "second")

	if got := FirstEnv("FS_TEST_A", "FS_TEST_B"); got != "first" {
		t.Errorf("FirstEnv() = %q, want %q", got, "first")
	}
}

func TestFirstEnv_SkipsEmptyAndUnset(t *testing.T) {
	t.Setenv("FS_TEST_EMPTY", "")
	t.Setenv("FS_TEST_SET", "value")

	got := FirstEnv("FS_TEST_UNSET", "FS_TEST_EMPTY", "FS_TEST_SET")
	if got != "value" {
		t.Errorf("FirstEnv() = %q, want %q", got, "value")
	}
}

func TestFirstEnv_NothingSet(t *testing.T) {
	if got := FirstEnv("FS_TEST_NOPE_1", "FS_TEST_NOPE_2"); got != "" {
		t.Errorf("FirstEnv() = %q, want empty", got)
	}
}

func TestFirstEnv_LegacyAlias(t *testing.T) {
	// Only the legacy Mixed_Case name is set; resolution must succeed.
	t.Setenv("Kimi_K2_HF_Base", "https://legacy.example.com/v1")

	got := FirstEnv(EnvKimiBase...)
	if got != "https://legacy.example.com/v1" {
		t.Errorf("FirstEnv(EnvKimiBase...) = %q, want legacy value", got)
	}
}

func TestRequireEnv_Found(t *testing.T) {
	t.Setenv("FS_TEST_TOKEN", "secret")

	got, err := RequireEnv("FS_TEST_TOKEN")
	if err != nil {
		t.Fatalf("RequireEnv() unexpected error: %v", err)
	}
	if got != "secret" {
		t.Errorf("RequireEnv() = %q, want %q", got, "secret")
	}
}

func TestRequireEnv_MissingNamesAllCandidates(t *testing.T) {
	_, err := RequireEnv("FS_TEST_MISSING_A", "FS_TEST_MISSING_B", "FS_TEST_MISSING_C")
	if err == nil {
		t.Fatal("RequireEnv() expected error, got nil")
	}
	if !errors.Is(err, ErrMissingEnv) {
		t.Errorf("RequireEnv() error = %v, want ErrMissingEnv", err)
	}

	// The message must list every candidate, not just the first.
	for _, name := range []string{"FS_TEST_MISSING_A", "FS_TEST_MISSING_B", "FS_TEST_MISSING_C"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("RequireEnv() error %q does not mention %s", err.Error(), name)
		}
	}
}
