package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) Anthropic {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	topP := float32(0.9)
	a := NewAnthropic("key", "claude-test", "system", LLMParameters{TopP: &topP}, 1024, 0, discardLogger())
	a.endpoint = srv.URL
	return a
}

func TestAnthropicComplete(t *testing.T) {
	var got anthropicChatRequest
	a := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: message_start\ndata: {\"type\":\"message_start\"}\n\n" +
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"Esta é \"}}\n\n" +
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"uma orientação.\"}}\n\n" +
			"event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"))
	})

	answer, err := a.Complete(context.Background(), "Posso me aposentar?")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "Esta é uma orientação." {
		t.Errorf("Complete() = %q", answer)
	}
	if got.System != "system" || got.MaxTokens != 1024 || !got.Stream {
		t.Errorf("request = %+v", got)
	}
	if got.Temperature != nil {
		t.Error("temperature should be omitted when unset")
	}
	if got.TopP == nil || *got.TopP != 0.9 {
		t.Error("top_p not forwarded")
	}
}

func TestAnthropicCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Non-2xx status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"type":"error"}`, http.StatusUnauthorized)
			},
		},
		{
			name: "Error event",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = w.Write([]byte("event: error\ndata: {\"type\":\"error\"," +
					"\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n"))
			},
		},
		{
			name: "Malformed delta",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = w.Write([]byte("event: content_block_delta\ndata: {not json}\n\n"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnthropic(t, tt.handler)
			if _, err := a.Complete(context.Background(), "?"); err == nil {
				t.Error("Complete() should return an error")
			}
		})
	}
}
