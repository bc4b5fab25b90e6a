// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/auth"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role, username, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", "", NilObjectID, false. This ensures callers can trust that ok=true
// means a valid, authenticated user with a valid ObjectID. Roles are kept
// exactly as stored; military role names are case-sensitive.
func UserCtx(r *http.Request) (role string, username string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", "", primitive.NilObjectID, false
	}
	return user.Role, user.Username, userID, true
}

// IsGlobalAdmin reports whether the current request's user is the global
// administrator. Both the admin role and the reserved admin username are
// required; a user merely holding the admin role string is not global admin.
func IsGlobalAdmin(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.Role == hierarchy.RoleAdmin && user.Username == hierarchy.AdminUsername
}

// IsCommander reports whether the current request's user is a commander.
func IsCommander(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == hierarchy.RoleCommander
}

// IsLeader reports whether the current request's user holds any leadership
// role (anything above plain Soldier).
func IsLeader(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && hierarchy.IsLeadershipRole(user.Role)
}

// UserUnitID returns the current user's home unit ID as an ObjectID.
// Returns NilObjectID if the user is not logged in or has no unit.
func UserUnitID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.UnitID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.UnitID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
