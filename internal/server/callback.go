package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// CallbackResult contains the outcome of a login callback.
type CallbackResult struct {
	// Token is the bearer credential to persist.
	Token string
	err   error
}

func (r *CallbackResult) Error() error {
	return r.err
}

// CallbackHandler receives the redirect back from the authorization server
// after the user approves access in their browser.
//
// The redirect may carry the credential directly (?token=) or carry an
// authorization code (?code=) that is exchanged for one. Implements the
// [Handler] interface for registration with a [Router].
type CallbackHandler struct {
	exchange    *oauth2.Config
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler bound to the given state
// token, which should be cryptographically random for CSRF protection.
// exchange may be nil when the authorization server delivers the credential
// directly on the redirect.
func NewCallbackHandler(exchange *oauth2.Config, state string) *CallbackHandler {
	return &CallbackHandler{
		exchange:   exchange,
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the login callback request.
//
// Validates the state parameter, resolves the credential, and sends the
// result through the result channel. A second callback is rejected.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if state := r.URL.Query().Get("state"); state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	token, err := h.resolveCredential(r)
	if err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// resolveCredential extracts the bearer token from the redirect, preferring
// a directly delivered token over an authorization code exchange.
func (h *CallbackHandler) resolveCredential(r *http.Request) (string, error) {
	q := r.URL.Query()

	if token := q.Get("token"); token != "" {
		return token, nil
	}

	code := q.Get("code")
	if code == "" {
		errParam := q.Get("error")
		errDesc := q.Get("error_description")
		return "", fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
	}

	if h.exchange == nil {
		return "", fmt.Errorf("received authorization code but no exchange is configured")
	}

	tok, err := h.exchange.Exchange(context.Background(), code)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	return tok.AccessToken, nil
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// The channel receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Login Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #5a67d8; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Login Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
