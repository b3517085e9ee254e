package kimi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeEndpoint is a minimal OpenAI-compatible chat-completion server.
// respond builds the JSON body for each request.
func fakeEndpoint(t *testing.T, respond func(r *http.Request) (int, any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body := respond(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":     "cmpl-test",
		"object": "chat.completion",
		"model":  "moonshotai/Kimi-K2-Instruct:fireworks-ai",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	server := fakeEndpoint(t, func(r *http.Request) (int, any) {
		return http.StatusOK, completionBody("Tokyo has four distinct seasons.")
	})

	client := New(server.URL, "test-token", "test-model")

	got, err := client.Generate(context.Background(), "Tell me about Tokyo")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if got != "Tokyo has four distinct seasons." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	server := fakeEndpoint(t, func(r *http.Request) (int, any) {
		return http.StatusOK, map[string]any{
			"id":      "cmpl-empty",
			"object":  "chat.completion",
			"choices": []any{},
		}
	})

	client := New(server.URL, "test-token", "test-model")

	_, err := client.Generate(context.Background(), "hello")
	if !errors.Is(err, ErrNoChoices) {
		t.Errorf("Generate() error = %v, want ErrNoChoices", err)
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	server := fakeEndpoint(t, func(r *http.Request) (int, any) {
		return http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"message": "upstream exploded"},
		}
	})

	client := New(server.URL, "test-token", "test-model")

	_, err := client.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("Generate() expected error, got nil")
	}
}
