package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatCompletions_EndpointNormalisation(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://localhost:1234", "http://localhost:1234/v1/chat/completions"},
		{"http://localhost:1234/", "http://localhost:1234/v1/chat/completions"},
		{"http://localhost:1234/v1/chat/completions", "http://localhost:1234/v1/chat/completions"},
	}
	for _, tt := range tests {
		c := NewChatCompletions(tt.url)
		if got := c.endpoint(); got != tt.want {
			t.Errorf("endpoint(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestChatCompletions_Generate(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "  mountain sunrise\ncity skyline  "}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	c := NewChatCompletions(server.URL)
	got, err := c.Generate(context.Background(), Config{
		Model:  "local-llm",
		System: "make queries",
		Prompt: "some text",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "mountain sunrise\ncity skyline" {
		t.Errorf("Generate = %q", got)
	}

	if gotBody["model"] != "local-llm" {
		t.Errorf("model = %v", gotBody["model"])
	}
	messages, ok := gotBody["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %v", gotBody["messages"])
	}
	if gotBody["max_tokens"] != float64(200) {
		t.Errorf("expected default max_tokens 200, got %v", gotBody["max_tokens"])
	}
}

func TestChatCompletions_GenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewChatCompletions(server.URL)
	if _, err := c.Generate(context.Background(), Config{Model: "m", Prompt: "p"}); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestChatCompletions_GenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"choices": []}`)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	c := NewChatCompletions(server.URL)
	if _, err := c.Generate(context.Background(), Config{Model: "m", Prompt: "p"}); err == nil {
		t.Error("expected error on empty choices")
	}
}

func TestChatCompletions_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewChatCompletions(server.URL)
	if !c.Healthy(context.Background()) {
		t.Error("expected healthy server to report healthy")
	}

	down := NewChatCompletions("http://127.0.0.1:1")
	if down.Healthy(context.Background()) {
		t.Error("expected unreachable server to report unhealthy")
	}
}

func TestForProvider(t *testing.T) {
	if _, err := ForProvider("chat", "http://localhost:1234"); err != nil {
		t.Errorf("chat provider: %v", err)
	}
	if _, err := ForProvider("", "http://localhost:1234"); err != nil {
		t.Errorf("default provider: %v", err)
	}
	if _, err := ForProvider("ollama", ""); err != nil {
		t.Errorf("ollama provider: %v", err)
	}
	if _, err := ForProvider("gemini", ""); err != nil {
		t.Errorf("gemini provider: %v", err)
	}
	if _, err := ForProvider("bogus", ""); err == nil {
		t.Error("expected error for unknown provider")
	}
}
