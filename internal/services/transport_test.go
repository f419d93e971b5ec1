package services

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/store"
	tu "github.com/jobtrail/trailctl/internal/testing"
)

func emptyResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     http.Header{},
	}
}

func TestCredentialTransport(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("attaches stored token as bearer", func(t *testing.T) {
		state := store.NewMemoryStore()
		if err := state.SetToken("tok-123"); err != nil {
			t.Fatalf("SetToken failed: %v", err)
		}

		var got string
		base := tu.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			got = r.Header.Get("Authorization")
			return emptyResponse(http.StatusOK), nil
		})

		transport := NewCredentialTransport(state, base, logger, nil)
		req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/profile", nil)
		if _, err := transport.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip failed: %v", err)
		}

		if got != "Bearer tok-123" {
			t.Errorf("expected bearer header, got %q", got)
		}
	})

	t.Run("no token means no header", func(t *testing.T) {
		state := store.NewMemoryStore()

		var got string
		base := tu.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			got = r.Header.Get("Authorization")
			return emptyResponse(http.StatusOK), nil
		})

		transport := NewCredentialTransport(state, base, logger, nil)
		req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/profile", nil)
		if _, err := transport.RoundTrip(req); err != nil {
			t.Fatalf("RoundTrip failed: %v", err)
		}

		if got != "" {
			t.Errorf("expected no authorization header, got %q", got)
		}
	})

	t.Run("does not mutate the caller's request", func(t *testing.T) {
		state := store.NewMemoryStore()
		state.SetToken("tok-123")

		base := tu.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			return emptyResponse(http.StatusOK), nil
		})

		transport := NewCredentialTransport(state, base, logger, nil)
		req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/profile", nil)
		transport.RoundTrip(req)

		if req.Header.Get("Authorization") != "" {
			t.Error("expected original request headers untouched")
		}
	})

	t.Run("401 erases credentials and invalidates", func(t *testing.T) {
		state := store.NewMemoryStore()
		state.SetToken("tok-123")
		state.SetAuthHint(true)

		invalidated := false
		base := tu.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			return emptyResponse(http.StatusUnauthorized), nil
		})

		transport := NewCredentialTransport(state, base, logger, func() { invalidated = true })
		req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/anything", nil)
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("RoundTrip failed: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 passed through, got %d", resp.StatusCode)
		}

		token, _ := state.Token()
		if token != "" {
			t.Errorf("expected token erased, got %q", token)
		}
		hint, _ := state.AuthHint()
		if hint {
			t.Error("expected auth hint erased")
		}
		if !invalidated {
			t.Error("expected invalidate hook to fire")
		}
	})

	t.Run("non-401 failures keep credentials", func(t *testing.T) {
		state := store.NewMemoryStore()
		state.SetToken("tok-123")

		base := tu.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			return emptyResponse(http.StatusInternalServerError), nil
		})

		transport := NewCredentialTransport(state, base, logger, nil)
		req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/anything", nil)
		transport.RoundTrip(req)

		token, _ := state.Token()
		if token != "tok-123" {
			t.Errorf("expected token kept on 500, got %q", token)
		}
	})
}
