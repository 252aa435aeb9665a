// ABOUTME: Tests for document retrieval using httptest servers.
// ABOUTME: Covers success, headers, status errors, empty bodies, and the size cap.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchSuccess(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		receivedUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<h1>Privacy Policy</h1>"))
	}))
	defer server.Close()

	f := New(Options{UserAgent: "test-agent"})
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(body) != "<h1>Privacy Policy</h1>" {
		t.Errorf("unexpected body %q", body)
	}
	if receivedUA != "test-agent" {
		t.Errorf("expected user agent 'test-agent', got %q", receivedUA)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "missing", http.StatusNotFound)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("   \n"))
		}},
		{"too large", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			f := New(Options{MaxBytes: 32})
			_, err := f.Fetch(context.Background(), server.URL)
			if !errors.Is(err, ErrRetrievalFailure) {
				t.Errorf("expected ErrRetrievalFailure, got %v", err)
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(Options{}).Fetch(context.Background(), url)
	if !errors.Is(err, ErrRetrievalFailure) {
		t.Errorf("expected ErrRetrievalFailure, got %v", err)
	}
}

func TestFetchRejectsNonHTTP(t *testing.T) {
	_, err := New(Options{}).Fetch(context.Background(), "file:///etc/passwd")
	if !errors.Is(err, ErrRetrievalFailure) {
		t.Errorf("expected ErrRetrievalFailure, got %v", err)
	}
}
