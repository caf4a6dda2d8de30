package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIClientSendsAPIKeyAndDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("expected X-API-Key header, got %q", r.Header.Get("X-API-Key"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "wh1"})
	}))
	defer srv.Close()

	c := &apiClient{baseURL: srv.URL, apiKey: "secret", http: srv.Client()}
	var out map[string]string
	if err := c.do(context.Background(), "GET", "/webhooks/wh1", nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["id"] != "wh1" {
		t.Fatalf("expected id wh1, got %+v", out)
	}
}

func TestAPIClientReturnsErrorOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"not_found"}}`))
	}))
	defer srv.Close()

	c := &apiClient{baseURL: srv.URL, http: srv.Client()}
	if err := c.do(context.Background(), "GET", "/mcp/policies/missing", nil, nil); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestGuessIaCType(t *testing.T) {
	cases := map[string]string{
		"main.tf":     "terraform",
		"playbook.yml": "ansible",
		"site.yaml":   "ansible",
	}
	for path, want := range cases {
		if got := guessIaCType(path); got != want {
			t.Errorf("guessIaCType(%q) = %q, want %q", path, got, want)
		}
	}
}
