package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func testClient(serverURL string) *OpenCodeClient {
	return &OpenCodeClient{
		baseURL: serverURL,
		client:  http.DefaultClient,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func TestOpenCodeClient_Submit(t *testing.T) {
	var gotModel string
	var gotPrompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			json.NewEncoder(w).Encode(map[string]string{"id": "sess-1"})
		case "/session/sess-1/message":
			var req messageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode message request: %v", err)
			}
			if len(req.Parts) == 1 {
				gotPrompt = req.Parts[0].Text
			}
			if req.Options != nil {
				gotModel = req.Options.Model
			}
			json.NewEncoder(w).Encode(messageResponse{Parts: []messagePart{
				{Type: "text", Text: "Draft "},
				{Type: "tool", Text: "ignored"},
				{Type: "text", Text: "saved."},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	reply, err := client.Submit(context.Background(), "write the doc", "openai/gpt-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Draft saved." {
		t.Errorf("reply = %q, want %q", reply, "Draft saved.")
	}
	if gotPrompt != "write the doc" {
		t.Errorf("server saw prompt %q", gotPrompt)
	}
	if gotModel != "openai/gpt-5" {
		t.Errorf("server saw model %q", gotModel)
	}
}

func TestOpenCodeClient_Submit_DefaultModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			var payload map[string]any
			json.NewDecoder(r.Body).Decode(&payload)
			if _, ok := payload["model"]; ok {
				t.Error("session payload should omit model when unset")
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "s"})
		default:
			var raw map[string]any
			json.NewDecoder(r.Body).Decode(&raw)
			if _, ok := raw["options"]; ok {
				t.Error("message payload should omit options when model unset")
			}
			json.NewEncoder(w).Encode(messageResponse{Parts: []messagePart{{Type: "text", Text: "ok"}}})
		}
	}))
	defer server.Close()

	reply, err := testClient(server.URL).Submit(context.Background(), "p", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "ok" {
		t.Errorf("reply = %q, want %q", reply, "ok")
	}
}

func TestOpenCodeClient_Submit_SessionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Submit(context.Background(), "p", "")
	if err == nil {
		t.Fatal("expected error when session creation fails")
	}
}

func TestOpenCodeClient_Submit_MessageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session" {
			json.NewEncoder(w).Encode(map[string]string{"id": "s"})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Submit(context.Background(), "p", "m")
	if err == nil {
		t.Fatal("expected error when message post fails")
	}
}

func TestOpenCodeClient_Submit_MissingSessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	_, err := testClient(server.URL).Submit(context.Background(), "p", "")
	if err == nil {
		t.Fatal("expected error when session id is missing")
	}
}

func TestOpenCodeClient_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	client := testClient(server.URL)
	if err := client.IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	server.Close()
	if err := client.IsAvailable(context.Background()); err == nil {
		t.Error("expected error once server is down")
	}
}
