// internal/app/system/access/access.go
package access

import (
	"context"
	"errors"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Directory is the persistence surface the engine scopes over. All lookups
// return only non-deleted records; a missing unit or user is
// mongo.ErrNoDocuments (single) or an empty slice (collection), never a
// synthesized error.
type Directory interface {
	GetUnit(ctx context.Context, id primitive.ObjectID) (models.Unit, error)
	GetAllUnits(ctx context.Context) ([]models.Unit, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetUsersByUnit(ctx context.Context, unitID primitive.ObjectID) ([]models.User, error)
}

// Engine decides which units and users an actor may view or manage, based
// on role, home unit, and position in the chain of command.
type Engine struct {
	dir Directory
	log *zap.Logger
}

func New(dir Directory, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{dir: dir, log: logger}
}

// isGlobalAdmin reports whether the user holds the global-admin sentinel.
// Both the role tag and the reserved username must match.
func isGlobalAdmin(u models.User) bool {
	return u.Role == hierarchy.RoleAdmin && u.Username == hierarchy.AdminUsername
}

// CanAccessUnit reports whether the user may view or manage the target
// unit. The global admin may access everything; everyone else is limited
// to their own unit plus units whose level their role can see and that sit
// in their chain of command.
func (e *Engine) CanAccessUnit(ctx context.Context, user models.User, target models.Unit) (bool, error) {
	if isGlobalAdmin(user) {
		return true, nil
	}
	if user.UnitID == target.ID {
		return true, nil
	}

	userUnit, err := e.dir.GetUnit(ctx, user.UnitID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	levels := hierarchy.LevelsVisibleTo(user.Role)
	if len(levels) == 0 {
		e.log.Warn("no defined hierarchy for role", zap.String("role", user.Role))
	}
	if !hierarchy.CanSeeLevel(user.Role, target.UnitLevel) {
		return false, nil
	}

	return e.inChainOfCommand(ctx, userUnit, target)
}

// inChainOfCommand walks the target's ancestor chain upward looking for
// the source unit. The walk is iterative with a visited set: a cyclic or
// dangling parent reference denies access instead of looping or erroring.
func (e *Engine) inChainOfCommand(ctx context.Context, source, target models.Unit) (bool, error) {
	visited := map[primitive.ObjectID]bool{}
	cur := target

	for {
		if cur.ID == source.ID {
			return true, nil
		}
		if cur.ParentID != nil && *cur.ParentID == source.ID {
			return true, nil
		}
		if hierarchy.LevelRank(source.UnitLevel) < hierarchy.LevelRank(cur.UnitLevel) {
			return false, nil
		}
		if cur.ParentID == nil {
			return false, nil
		}
		if visited[cur.ID] {
			e.log.Warn("cycle detected in unit parent chain", zap.String("unit_id", cur.ID.Hex()))
			return false, nil
		}
		visited[cur.ID] = true

		parent, err := e.dir.GetUnit(ctx, *cur.ParentID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Dangling parent reference: treat as no further ancestor.
			return false, nil
		}
		if err != nil {
			return false, err
		}
		cur = parent
	}
}

// AccessibleUnits enumerates every unit the actor may access. An unknown
// actor gets an empty slice, not an error.
//
// The global admin sees all units. A Commander sees their home unit plus
// the transitive closure of its subunits. Every other role gets a linear
// scan through CanAccessUnit.
func (e *Engine) AccessibleUnits(ctx context.Context, actorID primitive.ObjectID) ([]models.Unit, error) {
	user, err := e.dir.GetUser(ctx, actorID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.Unit{}, nil
	}
	if err != nil {
		return nil, err
	}

	if isGlobalAdmin(user) {
		return e.dir.GetAllUnits(ctx)
	}

	if user.Role == hierarchy.RoleCommander {
		return e.descendantClosure(ctx, user.UnitID)
	}

	all, err := e.dir.GetAllUnits(ctx)
	if err != nil {
		return nil, err
	}
	accessible := []models.Unit{}
	for _, unit := range all {
		ok, err := e.CanAccessUnit(ctx, user, unit)
		if err != nil {
			return nil, err
		}
		if ok {
			accessible = append(accessible, unit)
		}
	}
	return accessible, nil
}

// descendantClosure returns the root unit plus all transitive subunits,
// guarded against cycles so corrupted data cannot loop.
func (e *Engine) descendantClosure(ctx context.Context, rootID primitive.ObjectID) ([]models.Unit, error) {
	root, err := e.dir.GetUnit(ctx, rootID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.Unit{}, nil
	}
	if err != nil {
		return nil, err
	}

	all, err := e.dir.GetAllUnits(ctx)
	if err != nil {
		return nil, err
	}

	children := map[primitive.ObjectID][]models.Unit{}
	for _, unit := range all {
		if unit.ParentID != nil {
			children[*unit.ParentID] = append(children[*unit.ParentID], unit)
		}
	}

	visited := map[primitive.ObjectID]bool{root.ID: true}
	closure := []models.Unit{root}
	queue := []primitive.ObjectID{root.ID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]
		for _, child := range children[parentID] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			closure = append(closure, child)
			queue = append(queue, child.ID)
		}
	}
	return closure, nil
}

// AccessibleUsers returns the de-duplicated union of users belonging to
// any accessible unit. First occurrence wins; order beyond that follows
// the unit enumeration.
func (e *Engine) AccessibleUsers(ctx context.Context, actorID primitive.ObjectID) ([]models.User, error) {
	units, err := e.AccessibleUnits(ctx, actorID)
	if err != nil {
		return nil, err
	}

	seen := map[primitive.ObjectID]bool{}
	users := []models.User{}
	for _, unit := range units {
		members, err := e.dir.GetUsersByUnit(ctx, unit.ID)
		if err != nil {
			return nil, err
		}
		for _, u := range members {
			if seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			users = append(users, u)
		}
	}
	return users, nil
}
