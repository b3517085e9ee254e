package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingEnv indicates that none of the candidate environment
// variables for a required value were set.
var ErrMissingEnv = errors.New("missing required environment variable")

// FirstEnv returns the value of the first candidate name that is set to
// a non-empty string, checking names in order. Empty strings count as
// unset. Returns "" when no candidate resolves.
//
// Candidate lists exist for backward compatibility: the original
// deployment used Mixed_Case names (e.g. Kimi_K2_HF_Base) which are
// still accepted alongside the SNAKE_CASE ones.
func FirstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// RequireEnv is FirstEnv for required values. When no candidate
// resolves it returns an error naming every candidate tried, so a
// single message tells the operator exactly what to set.
func RequireEnv(names ...string) (string, error) {
	if v := FirstEnv(names...); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w (tried: %s)", ErrMissingEnv, strings.Join(names, ", "))
}
