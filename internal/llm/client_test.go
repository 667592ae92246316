package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeProvider returns an httptest server speaking the chat completion
// wire format.
func fakeProvider(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
}

func TestClient_Chat(t *testing.T) {
	client := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth header = %q", auth)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v, want system + user", req.Messages)
		}
		if req.Temperature != 0.85 {
			t.Errorf("temperature = %v, want 0.85", req.Temperature)
		}

		json.NewEncoder(w).Encode(Response{
			Model: "gpt-3.5-turbo",
			Choices: []struct {
				Index        int     `json:"index"`
				Message      Message `json:"message"`
				FinishReason string  `json:"finish_reason"`
			}{
				{Message: Message{Role: "assistant", Content: "hello there"}},
			},
			Usage: Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	})

	result, err := client.Chat(context.Background(), "be nice", "hi", 0.85)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Text != "hello there" {
		t.Errorf("text = %q, want %q", result.Text, "hello there")
	}
	if result.Usage.TotalTokens != 15 {
		t.Errorf("total tokens = %d, want 15", result.Usage.TotalTokens)
	}
}

func TestClient_Chat_ProviderError(t *testing.T) {
	client := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})

	_, err := client.Chat(context.Background(), "", "hi", 0)
	if err == nil {
		t.Fatal("Chat() should fail on provider error")
	}

	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %T, want *CompletionError", err)
	}
	if ce.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", ce.StatusCode)
	}
}

func TestClient_Chat_EmptyChoices(t *testing.T) {
	client := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{})
	})

	_, err := client.Chat(context.Background(), "", "hi", 0)
	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *CompletionError for empty choices", err)
	}
}

func TestClient_ListModels(t *testing.T) {
	client := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path = %q, want /v1/models", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"id":"gpt-3.5-turbo"},{"id":"gpt-4"}]}`))
	})

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[1] != "gpt-4" {
		t.Errorf("models = %v", models)
	}
}

func TestClient_IsConfigured(t *testing.T) {
	if NewClient(Config{}).IsConfigured() {
		t.Error("client without key should not be configured")
	}
	if !NewClient(Config{APIKey: "k"}).IsConfigured() {
		t.Error("client with key should be configured")
	}
}
