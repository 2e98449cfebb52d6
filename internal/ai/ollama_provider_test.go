package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func TestOllamaComplete_Success(t *testing.T) {
	var gotReq ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"model":"openchat:7b","message":{"role":"assistant","content":"{\"salary_range\":\"not listed\"}"},"done":true}`))
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "openchat:7b", srv.Client())
	got, err := provider.Complete(context.Background(), "summarize this", summaryOutput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"salary_range":"not listed"}` {
		t.Errorf("got %q", got)
	}
	if gotReq.Stream {
		t.Error("expected stream=false")
	}
	if gotReq.Format["type"] != "object" {
		t.Errorf("expected schema format, got %v", gotReq.Format)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "summarize this" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestOllamaComplete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusNotFound, `{"error":"model not found"}`},
		{"error field", http.StatusOK, `{"error":"out of memory"}`},
		{"empty content", http.StatusOK, `{"message":{"content":""},"done":true}`},
		{"malformed", http.StatusOK, `{not json`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "m", srv.Client()).Complete(context.Background(), "p", summaryOutput)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.status != http.StatusOK {
				var httpErr *model.HTTPError
				if !errors.As(err, &httpErr) || httpErr.StatusCode != tc.status {
					t.Errorf("expected HTTPError %d, got %v", tc.status, err)
				}
			}
		})
	}
}
