// internal/app/store/units/unitstore.go
package unitstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrBadLevel              = errors.New(`unit_level must be "Team"|"Squad"|"Platoon"|"Company"|"Battalion"`)
	ErrInvalidParent         = errors.New("parent unit must sit strictly higher in the unit hierarchy")
	ErrParentIsDescendant    = errors.New("cannot re-parent a unit beneath one of its own subunits")
	ErrDuplicateReferralCode = errors.New("a unit with this referral code already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("units")}
}

func notDeleted(filter bson.M) bson.M {
	filter["is_deleted"] = false
	return filter
}

// Create inserts a new unit. The parent, when given, must exist and sit
// strictly higher in the level ordering. A referral code is generated when
// none is supplied.
func (s *Store) Create(ctx context.Context, u models.Unit) (models.Unit, error) {
	u.Name = strings.TrimSpace(u.Name)
	if !hierarchy.ValidLevel(u.UnitLevel) {
		return models.Unit{}, ErrBadLevel
	}
	if u.ParentID != nil {
		parent, err := s.GetByID(ctx, *u.ParentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.Unit{}, ErrInvalidParent
			}
			return models.Unit{}, err
		}
		if hierarchy.LevelRank(parent.UnitLevel) <= hierarchy.LevelRank(u.UnitLevel) {
			return models.Unit{}, ErrInvalidParent
		}
	}
	if u.ReferralCode == "" {
		u.ReferralCode = uuid.NewString()
	}

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Unit{}, ErrDuplicateReferralCode
		}
		return models.Unit{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Unit, error) {
	var u models.Unit
	if err := s.c.FindOne(ctx, notDeleted(bson.M{"_id": id})).Decode(&u); err != nil {
		return models.Unit{}, err
	}
	return u, nil
}

// GetByReferralCode looks up a unit by its join code.
func (s *Store) GetByReferralCode(ctx context.Context, code string) (models.Unit, error) {
	var u models.Unit
	if err := s.c.FindOne(ctx, notDeleted(bson.M{"referral_code": code})).Decode(&u); err != nil {
		return models.Unit{}, err
	}
	return u, nil
}

// GetAll returns every live unit, sorted by name.
func (s *Store) GetAll(ctx context.Context) ([]models.Unit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.c.Find(ctx, notDeleted(bson.M{}), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var units []models.Unit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// GetSubunits returns the direct children of a unit.
func (s *Store) GetSubunits(ctx context.Context, parentID primitive.ObjectID) ([]models.Unit, error) {
	cursor, err := s.c.Find(ctx, notDeleted(bson.M{"parent_id": parentID}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var units []models.Unit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// SearchByName returns live units whose folded name contains the query.
func (s *Store) SearchByName(ctx context.Context, query string) ([]models.Unit, error) {
	folded := text.Fold(strings.TrimSpace(query))
	if folded == "" {
		return s.GetAll(ctx)
	}
	filter := notDeleted(bson.M{"name": primitive.Regex{Pattern: regexEscape(folded), Options: "i"}})
	cursor, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var units []models.Unit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// UpdateInfo renames a unit.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if strings.TrimSpace(name) != "" {
		set["name"] = strings.TrimSpace(name)
	}
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Reparent moves a unit under a new parent (or to the top when parentID is
// nil). The new parent must exist, sit strictly higher in the level
// ordering, not be the unit itself, and not be one of its descendants.
func (s *Store) Reparent(ctx context.Context, id primitive.ObjectID, parentID *primitive.ObjectID) error {
	unit, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if parentID == nil {
		update["$unset"] = bson.M{"parent_id": ""}
		_, err = s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), update)
		return err
	}

	if *parentID == id {
		return ErrInvalidParent
	}
	parent, err := s.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidParent
		}
		return err
	}
	if hierarchy.LevelRank(parent.UnitLevel) <= hierarchy.LevelRank(unit.UnitLevel) {
		return ErrInvalidParent
	}
	descendant, err := s.isDescendant(ctx, id, *parentID)
	if err != nil {
		return err
	}
	if descendant {
		return ErrParentIsDescendant
	}

	update["$set"].(bson.M)["parent_id"] = *parentID
	_, err = s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), update)
	return err
}

// isDescendant reports whether candidate sits somewhere under root.
func (s *Store) isDescendant(ctx context.Context, root, candidate primitive.ObjectID) (bool, error) {
	queue := []primitive.ObjectID{root}
	seen := map[primitive.ObjectID]bool{root: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		children, err := s.GetSubunits(ctx, current)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			if child.ID == candidate {
				return true, nil
			}
			if !seen[child.ID] {
				seen[child.ID] = true
				queue = append(queue, child.ID)
			}
		}
	}
	return false, nil
}

// SoftDelete hides a unit while keeping its history. Returns
// mongo.ErrNoDocuments when the unit does not exist or is already deleted.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"is_deleted": true,
		"deleted_at": now,
		"updated_at": now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func regexEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
