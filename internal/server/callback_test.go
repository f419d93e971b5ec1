package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("delivers a directly passed token", func(t *testing.T) {
		handler := NewCallbackHandler(nil, "state-1")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state-1&token=tok-abc", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}

		result := <-handler.Result()
		if err := result.Error(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Token != "tok-abc" {
			t.Errorf("unexpected token: %q", result.Token)
		}
	})

	t.Run("rejects a wrong state token", func(t *testing.T) {
		handler := NewCallbackHandler(nil, "state-1")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&token=tok-abc", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected a state validation error")
		}
	})

	t.Run("surfaces the provider's error response", func(t *testing.T) {
		handler := NewCallbackHandler(nil, "state-1")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state-1&error=access_denied&error_description=nope", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		result := <-handler.Result()
		err := result.Error()
		if err == nil {
			t.Fatal("expected an authorization error")
		}
		if !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected provider error code in %v", err)
		}
	})

	t.Run("code without an exchange config errors", func(t *testing.T) {
		handler := NewCallbackHandler(nil, "state-1")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=authcode", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected an error when no exchange is configured")
		}
	})

	t.Run("processes only one callback", func(t *testing.T) {
		handler := NewCallbackHandler(nil, "state-1")

		first := httptest.NewRequest(http.MethodGet, "/callback?state=state-1&token=tok-abc", nil)
		handler.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/callback?state=state-1&token=tok-replay", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, second)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected replay rejected with 400, got %d", w.Code)
		}

		result := <-handler.Result()
		if result.Token != "tok-abc" {
			t.Errorf("expected the first token delivered, got %q", result.Token)
		}
	})

	t.Run("registers the callback route", func(t *testing.T) {
		handler := NewCallbackHandler(nil, "state-1")
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes: %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("filters by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodPost, "/submit", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
		if w.Code != http.StatusCreated {
			t.Errorf("expected 201 for POST, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/submit", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for GET, got %d", w.Code)
		}
	})

	t.Run("applies middleware in reverse order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		want := []string{"outer", "inner", "handler"}
		if len(order) != len(want) {
			t.Fatalf("unexpected call order: %v", order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("unexpected call order: %v", order)
			}
		}
	})

	t.Run("logging middleware passes requests through", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Logging(log.New(io.Discard)))
		router.Handler(NewCallbackHandler(nil, "state-1"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&token=tok", nil))
		if w.Code != http.StatusOK {
			t.Errorf("expected 200 through middleware, got %d", w.Code)
		}
	})
}
