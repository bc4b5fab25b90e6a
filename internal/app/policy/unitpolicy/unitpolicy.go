// internal/app/policy/unitpolicy/unitpolicy.go
package unitpolicy

import (
	"context"
	"errors"
	"net/http"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/access"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/authz"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CanViewUnit reports whether the current request user may view the target
// unit:
// - The global admin always can
// - Everyone else must pass the chain-of-command access check
// Returns an error if the database check fails, allowing callers to
// distinguish between "not authorized" (false, nil) and "database error"
// (false, err).
func CanViewUnit(ctx context.Context, engine *access.Engine, dir access.Directory, r *http.Request, target models.Unit) (bool, error) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false, nil
	}
	if authz.IsGlobalAdmin(r) {
		return true, nil
	}
	user, err := dir.GetUser(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return engine.CanAccessUnit(ctx, user, target)
}

// CanManageUnit reports whether the current request user may change the
// target unit (rename, re-parent, delete, manage assignments):
// - The global admin always can
// - Leadership roles can, if the unit is within their accessible scope
// - Plain soldiers never can, even for their own unit
func CanManageUnit(ctx context.Context, engine *access.Engine, dir access.Directory, r *http.Request, target models.Unit) (bool, error) {
	if authz.IsGlobalAdmin(r) {
		return true, nil
	}
	if !authz.IsLeader(r) {
		return false, nil
	}
	return CanViewUnit(ctx, engine, dir, r, target)
}

// CanViewUser reports whether the current request user may view the target
// user's records: themselves always, otherwise anyone in a unit they can
// access.
func CanViewUser(ctx context.Context, engine *access.Engine, dir access.Directory, r *http.Request, target models.User) (bool, error) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false, nil
	}
	if uid == target.ID || authz.IsGlobalAdmin(r) {
		return true, nil
	}
	targetUnit, err := dir.GetUnit(ctx, target.UnitID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return CanViewUnit(ctx, engine, dir, r, targetUnit)
}

// AccessibleUnitIDs returns the IDs of every unit the current request user
// may access. Anonymous requests get an empty slice.
func AccessibleUnitIDs(ctx context.Context, engine *access.Engine, r *http.Request) ([]primitive.ObjectID, error) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return []primitive.ObjectID{}, nil
	}
	units, err := engine.AccessibleUnits(ctx, uid)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	return ids, nil
}
