package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestWithUser(u *auth.SessionUser) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if u == nil {
		return r
	}
	return auth.WithUser(r, u)
}

func TestUserCtx_Anonymous(t *testing.T) {
	role, username, id, ok := UserCtx(requestWithUser(nil))
	if ok {
		t.Fatal("anonymous request must not report ok")
	}
	if role != "" || username != "" || id != primitive.NilObjectID {
		t.Errorf("got role=%q username=%q id=%v", role, username, id)
	}
}

func TestUserCtx_MalformedIDFailsClosed(t *testing.T) {
	_, _, _, ok := UserCtx(requestWithUser(&auth.SessionUser{ID: "not-hex", Role: "Commander"}))
	if ok {
		t.Error("malformed session user ID must fail closed")
	}
}

func TestUserCtx_PreservesRoleCase(t *testing.T) {
	oid := primitive.NewObjectID()
	role, username, id, ok := UserCtx(requestWithUser(&auth.SessionUser{
		ID: oid.Hex(), Username: "1sg.jones", Role: "First Sergeant",
	}))
	if !ok {
		t.Fatal("expected ok")
	}
	if role != "First Sergeant" {
		t.Errorf("role: got %q, want First Sergeant", role)
	}
	if username != "1sg.jones" || id != oid {
		t.Errorf("got username=%q id=%v", username, id)
	}
}

func TestIsGlobalAdmin(t *testing.T) {
	oid := primitive.NewObjectID().Hex()
	cases := []struct {
		name string
		user *auth.SessionUser
		want bool
	}{
		{"admin role and username", &auth.SessionUser{ID: oid, Username: "admin", Role: "admin"}, true},
		{"admin role only", &auth.SessionUser{ID: oid, Username: "jsmith", Role: "admin"}, false},
		{"admin username only", &auth.SessionUser{ID: oid, Username: "admin", Role: "Commander"}, false},
		{"anonymous", nil, false},
	}
	for _, tc := range cases {
		if got := IsGlobalAdmin(requestWithUser(tc.user)); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsLeader(t *testing.T) {
	oid := primitive.NewObjectID().Hex()
	if IsLeader(requestWithUser(&auth.SessionUser{ID: oid, Username: "pvt", Role: "Soldier"})) {
		t.Error("Soldier is not a leader")
	}
	if !IsLeader(requestWithUser(&auth.SessionUser{ID: oid, Username: "sl", Role: "Squad Leader"})) {
		t.Error("Squad Leader is a leader")
	}
}

func TestUserUnitID(t *testing.T) {
	unit := primitive.NewObjectID()
	r := requestWithUser(&auth.SessionUser{
		ID: primitive.NewObjectID().Hex(), Username: "tl", Role: "Team Leader", UnitID: unit.Hex(),
	})
	if got := UserUnitID(r); got != unit {
		t.Errorf("got %v, want %v", got, unit)
	}
	if got := UserUnitID(requestWithUser(nil)); got != primitive.NilObjectID {
		t.Errorf("anonymous: got %v, want NilObjectID", got)
	}
	if got := UserUnitID(requestWithUser(&auth.SessionUser{ID: "x", UnitID: "bad"})); got != primitive.NilObjectID {
		t.Errorf("malformed: got %v, want NilObjectID", got)
	}
}
