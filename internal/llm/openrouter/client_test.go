package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resume-critic/internal/llm"
)

func TestCompleteReadsFirstChoice(t *testing.T) {
	var body map[string]any
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"**Minha Nota:** 91%"}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "or-key", Model: "openai/gpt-4o-mini", BaseURL: srv.URL + "/api/v1", Title: "resume-critic"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.Request{System: "sys", User: "usr", Temperature: llm.Temperature(0.5)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "**Minha Nota:** 91%" {
		t.Fatalf("unexpected text %q", out)
	}
	if got := headers.Get("Authorization"); got != "Bearer or-key" {
		t.Fatalf("unexpected auth %q", got)
	}
	if got := headers.Get("X-Title"); got != "resume-critic" {
		t.Fatalf("unexpected title %q", got)
	}
	if body["model"] != "openai/gpt-4o-mini" || body["temperature"] != 0.5 {
		t.Fatalf("unexpected body %v", body)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected two messages, got %v", body["messages"])
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		isEmpty bool
	}{
		{name: "error payload", status: http.StatusPaymentRequired, body: `{"error":{"message":"insufficient credits"}}`, want: "insufficient credits"},
		{name: "status only", status: http.StatusServiceUnavailable, body: `upstream down`, want: "status=503"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: "missing choices"},
		{name: "empty", status: http.StatusOK, body: `{"choices":[{"message":{"content":""}}]}`, isEmpty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewClient(Options{APIKey: "k", Model: "m", BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			_, err = client.Complete(context.Background(), llm.Request{System: "s", User: "u"})
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.isEmpty {
				if !errors.Is(err, llm.ErrEmptyCompletion) {
					t.Fatalf("expected ErrEmptyCompletion, got %v", err)
				}
				return
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}
