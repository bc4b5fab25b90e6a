package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/app/features/login"
	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/ratelimit"
	"github.com/Deepak-cell311/GreenBook/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newLoginHandler(t *testing.T, db *mongo.Database, limiter *ratelimit.LoginLimiter) *login.Handler {
	t.Helper()
	if err := auth.InitSessionStore("login-test-session-key-0123456789ab", "", false, zap.NewNop()); err != nil {
		t.Fatalf("init session store: %v", err)
	}
	return login.NewHandler(userstore.New(db), limiter, nil, zap.NewNop())
}

func postLogin(h *login.Handler, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleLogin(w, r)
	return w
}

func TestHandleLogin_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "1st Squad", hierarchy.LevelSquad, nil)
	user := fixtures.CreateUser(ctx, "jdoe", hierarchy.RoleSoldier, unit.ID)

	h := newLoginHandler(t, db, nil)
	w := postLogin(h, `{"username": "jdoe", "password": "password"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Error("expected a session cookie to be set")
	}
	var resp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != user.ID.Hex() || resp.Username != "jdoe" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "2nd Squad", hierarchy.LevelSquad, nil)
	fixtures.CreateUser(ctx, "locked", hierarchy.RoleSoldier, unit.ID)

	h := newLoginHandler(t, db, nil)
	w := postLogin(h, `{"username": "locked", "password": "nope"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestHandleLogin_UnknownUserSameResponse(t *testing.T) {
	db := testutil.SetupTestDB(t)

	h := newLoginHandler(t, db, nil)
	w := postLogin(h, `{"username": "ghost", "password": "whatever"}`)

	// Unknown users and wrong passwords look identical to the caller.
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid username or password") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHandleLogin_MissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)

	h := newLoginHandler(t, db, nil)
	if w := postLogin(h, `{"username": "", "password": "x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty username: status = %d, want 400", w.Code)
	}
	if w := postLogin(h, `{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d, want 400", w.Code)
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "3rd Squad", hierarchy.LevelSquad, nil)
	fixtures.CreateUser(ctx, "target", hierarchy.RoleSoldier, unit.ID)

	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	h := newLoginHandler(t, db, limiter)

	body := `{"username": "target", "password": "wrong"}`
	for i := 0; i < 2; i++ {
		if w := postLogin(h, body); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, w.Code)
		}
	}
	if w := postLogin(h, body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 once the window is exhausted", w.Code)
	}
}

func TestHandleLogin_SuccessResetsUsernameWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "4th Squad", hierarchy.LevelSquad, nil)
	fixtures.CreateUser(ctx, "comeback", hierarchy.RoleSoldier, unit.ID)

	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 3, time.Minute)
	h := newLoginHandler(t, db, limiter)

	if w := postLogin(h, `{"username": "comeback", "password": "wrong"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("warm-up attempt: status = %d, want 401", w.Code)
	}
	if w := postLogin(h, `{"username": "comeback", "password": "password"}`); w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, want 200", w.Code)
	}

	// The successful login cleared the username window, so the full
	// allowance is available again.
	for i := 0; i < 3; i++ {
		if w := postLogin(h, `{"username": "comeback", "password": "wrong"}`); w.Code != http.StatusUnauthorized {
			t.Fatalf("post-reset attempt %d: status = %d, want 401", i+1, w.Code)
		}
	}
}
