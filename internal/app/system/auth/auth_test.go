package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

func initTestStore(t *testing.T) {
	t.Helper()
	prev := Store
	t.Cleanup(func() { Store = prev })
	if err := InitSessionStore(strings.Repeat("k", 32), "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore: %v", err)
	}
}

func TestInitSessionStore_EmptyKey(t *testing.T) {
	if err := InitSessionStore("", "", false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestRequireSignedIn_AnonymousGets401(t *testing.T) {
	handler := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for anonymous request")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/units", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestRequireSignedIn_PassesThroughWithUser(t *testing.T) {
	called := false
	handler := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := WithUser(httptest.NewRequest(http.MethodGet, "/units", nil),
		&SessionUser{ID: "abc", Username: "sgtmajor", Role: "Commander"})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !called {
		t.Error("handler should run for signed-in request")
	}
}

func TestSignInRoundTrip(t *testing.T) {
	initTestStore(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	want := SessionUser{ID: "64f000000000000000000001", Username: "cpt.smith", Name: "CPT Smith", Role: "Commander", UnitID: "64f000000000000000000002"}
	if err := SignIn(rec, req, want); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	// Replay the cookie through LoadSessionUser.
	req2 := httptest.NewRequest(http.MethodGet, "/units", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}

	var got *SessionUser
	LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected user in context after sign-in")
	}
	if *got != want {
		t.Errorf("session user: got %+v, want %+v", *got, want)
	}
}

func TestSignOutExpiresCookie(t *testing.T) {
	initTestStore(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	if err := SignOut(rec, req); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected an expired session cookie")
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge: got %d, want -1", cookies[0].MaxAge)
	}
}

func TestLoadSessionUser_NoStoreIsNoOp(t *testing.T) {
	prev := Store
	Store = nil
	t.Cleanup(func() { Store = prev })

	called := false
	LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := CurrentUser(r); ok {
			t.Error("no user should be present without a store")
		}
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Error("next handler must still run")
	}
}

func TestGetString_WrongTypeIsEmpty(t *testing.T) {
	s := sessions.NewSession(sessions.NewCookieStore([]byte("test")), "s")
	s.Values["n"] = 42
	if got := getString(s, "n"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
