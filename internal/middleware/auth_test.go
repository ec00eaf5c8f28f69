package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/models"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type resolverFunc func(ctx context.Context, token string) (*models.Session, error)

func (f resolverFunc) Session(ctx context.Context, token string) (*models.Session, error) {
	return f(ctx, token)
}

var knownSession = resolverFunc(func(_ context.Context, token string) (*models.Session, error) {
	if token == "good" {
		return &models.Session{Token: token, UserID: "alice", Phone: "+919876543210"}, nil
	}
	return nil, errors.New("unauthorized")
})

func TestSessionAuth_NoToken(t *testing.T) {
	dummy := &dummyHandler{}
	h := SessionAuth(knownSession, zap.NewNop())(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized, got %d", rec.Code)
	}
}

func TestSessionAuth_UnknownToken(t *testing.T) {
	dummy := &dummyHandler{}
	h := SessionAuth(knownSession, zap.NewNop())(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer stale")
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called for an unknown token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized, got %d", rec.Code)
	}
}

func TestSessionAuth_ValidToken(t *testing.T) {
	dummy := &dummyHandler{}
	h := SessionAuth(knownSession, zap.NewNop())(dummy)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	req.Header.Set("Authorization", "bearer good")
	h.ServeHTTP(rec, req)

	if !dummy.called {
		t.Fatal("expected next handler to be called with a valid session")
	}
	if got := GetUserIDFromContext(dummy.ctx); got != "alice" {
		t.Errorf("expected user ID alice in context, got %q", got)
	}
	if sess := GetSessionFromContext(dummy.ctx); sess == nil || sess.Token != "good" {
		t.Errorf("expected session in context, got %+v", sess)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"Bearer":        "",
		"Basic abc":     "",
		"Bearer abc":    "abc",
		"BEARER  abc  ": "abc",
	}
	for header, want := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := BearerToken(req); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	if got := GetUserIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty user ID, got %q", got)
	}
}
