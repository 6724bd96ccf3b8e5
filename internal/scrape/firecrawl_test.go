package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.apiURL = server.URL
	return client, server
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("  ", time.Second); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestMarkdownHappyPath(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.URL != "https://example.com/jobs/42" {
			t.Errorf("request url = %q", req.URL)
		}
		if len(req.Formats) != 1 || req.Formats[0] != "markdown" {
			t.Errorf("request formats = %v", req.Formats)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"markdown": "# Software Engineer\n\nGreat job."},
		})
	})

	got, err := client.Markdown(context.Background(), "https://example.com/jobs/42")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if got != "# Software Engineer\n\nGreat job." {
		t.Fatalf("Markdown = %q", got)
	}
}

func TestMarkdownUnsuccessfulResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "blocked"})
	})

	_, err := client.Markdown(context.Background(), "https://example.com")
	if err == nil || err.Error() != "firecrawl error: blocked" {
		t.Fatalf("err = %v", err)
	}
}

func TestMarkdownHTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	})

	if _, err := client.Markdown(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestMarkdownEmptyResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"markdown": "  "}})
	})

	_, err := client.Markdown(context.Background(), "https://example.com")
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("err = %v, want ErrEmptyResult", err)
	}
}

func TestMarkdownTimeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client.httpClient.Timeout = 20 * time.Millisecond

	_, err := client.Markdown(context.Background(), "https://example.com")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}
