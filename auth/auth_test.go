package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sessionRequest(t *testing.T, userID uint) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	CreateSession(w, userID)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	req := sessionRequest(t, 42)
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42, got %d ok=%v", uid, ok)
	}
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "1.9999999999.forged"})
	if _, ok := ParseSession(req); ok {
		t.Fatal("forged cookie must not parse")
	}
}

func TestSessionExpires(t *testing.T) {
	req := sessionRequest(t, 7)
	defer func() { now = time.Now }()
	now = func() time.Time { return time.Now().Add(SessionTTL + time.Hour) }
	if _, ok := ParseSession(req); ok {
		t.Fatal("expired session must not parse")
	}
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(RequireAuth(ok))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: expected 401 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, sessionRequest(t, 3))
	if w.Code != http.StatusNoContent {
		t.Fatalf("signed request: expected 204 got %d", w.Code)
	}

	SetUserVerifier(func(context.Context, uint) bool { return false })
	defer SetUserVerifier(nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, sessionRequest(t, 3))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user: expected 401 got %d", w.Code)
	}
}
