package services

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/jobtrail/trailctl/internal/store"
)

// CredentialTransport is an [http.RoundTripper] applied to every outbound
// request. It attaches the stored bearer token when one exists and treats
// any 401 response as a hard invalidation signal: the durable credential
// and hint are erased immediately and the invalidate hook downgrades the
// in-memory session, regardless of which component issued the request.
type CredentialTransport struct {
	state  store.Store
	base   http.RoundTripper
	logger *log.Logger

	// invalidate downgrades the in-memory session on 401. Optional.
	invalidate func()
}

// NewCredentialTransport wraps base (defaulting to [http.DefaultTransport])
// with credential attachment and 401 handling.
func NewCredentialTransport(state store.Store, base http.RoundTripper, logger *log.Logger, invalidate func()) *CredentialTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &CredentialTransport{
		state:      state,
		base:       base,
		logger:     logger,
		invalidate: invalidate,
	}
}

// RoundTrip implements [http.RoundTripper].
func (t *CredentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone before mutating; the request may be retried by the caller.
	req = req.Clone(req.Context())

	if token, err := t.state.Token(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if err != nil {
		t.logger.Warn("failed to read stored token", "error", err)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.logger.Warn("unauthorized response, clearing stored credentials", "path", req.URL.Path)
		if err := t.state.ClearCredentials(); err != nil {
			t.logger.Warn("failed to clear credentials", "error", err)
		}
		if t.invalidate != nil {
			t.invalidate()
		}
	}

	return resp, nil
}
