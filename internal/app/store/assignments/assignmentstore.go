// internal/app/store/assignments/assignmentstore.go
package assignmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errBadType = errors.New(`assignment_type must be "PRIMARY"|"ATTACHED"|"TEMPORARY"|"DUAL_HATTED"`)
)

// UserHomer re-homes a user when their primary assignment moves. Satisfied
// by the user store.
type UserHomer interface {
	SetUnit(ctx context.Context, id, unitID primitive.ObjectID) error
}

type Store struct {
	c     *mongo.Collection
	users UserHomer
}

func New(db *mongo.Database, users UserHomer) *Store {
	return &Store{c: db.Collection("assignments"), users: users}
}

func open(filter bson.M) bson.M {
	filter["end_date"] = nil
	filter["is_deleted"] = false
	return filter
}

func validType(t string) bool {
	switch t {
	case models.AssignmentPrimary, models.AssignmentAttached,
		models.AssignmentTemporary, models.AssignmentDualHatted:
		return true
	}
	return false
}

// Create opens a new assignment. When the new assignment is PRIMARY, any
// existing open PRIMARY assignment for the user is demoted to ATTACHED and
// the user's home unit moves to the new unit.
func (s *Store) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	if !validType(a.AssignmentType) {
		return models.Assignment{}, errBadType
	}

	now := time.Now().UTC()
	if a.StartDate.IsZero() {
		a.StartDate = now
	}
	a.ID = primitive.NewObjectID()
	a.EndDate = nil
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assignment{}, err
	}

	// The insert lands before the demote so a failure here cannot leave
	// the user homed to a unit with no open assignment. If the demote or
	// re-home fails, the new assignment is rolled back instead.
	if a.AssignmentType == models.AssignmentPrimary {
		if err := s.adoptPrimary(ctx, a, now); err != nil {
			_, _ = s.c.DeleteOne(ctx, bson.M{"_id": a.ID})
			return models.Assignment{}, err
		}
	}
	return a, nil
}

func (s *Store) adoptPrimary(ctx context.Context, a models.Assignment, now time.Time) error {
	_, err := s.c.UpdateMany(ctx,
		open(bson.M{
			"user_id":         a.UserID,
			"assignment_type": models.AssignmentPrimary,
			"_id":             bson.M{"$ne": a.ID},
		}),
		bson.M{"$set": bson.M{
			"assignment_type": models.AssignmentAttached,
			"updated_at":      now,
		}})
	if err != nil {
		return err
	}
	return s.users.SetUnit(ctx, a.UserID, a.UnitID)
}

// End closes an assignment by setting its end date. Ending an open PRIMARY
// assignment promotes the user's most recent remaining open assignment to
// PRIMARY and re-homes the user to that unit.
func (s *Store) End(ctx context.Context, id primitive.ObjectID) error {
	var a models.Assignment
	if err := s.c.FindOne(ctx, open(bson.M{"_id": id})).Decode(&a); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"end_date":   now,
		"updated_at": now,
	}})
	if err != nil {
		return err
	}

	if a.AssignmentType != models.AssignmentPrimary {
		return nil
	}

	// Promote the most recently started remaining open assignment.
	opts := options.FindOne().SetSort(bson.D{{Key: "start_date", Value: -1}})
	var next models.Assignment
	err = s.c.FindOne(ctx, open(bson.M{"user_id": a.UserID}), opts).Decode(&next)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": next.ID}, bson.M{"$set": bson.M{
		"assignment_type": models.AssignmentPrimary,
		"updated_at":      now,
	}})
	if err != nil {
		return err
	}
	return s.users.SetUnit(ctx, a.UserID, next.UnitID)
}

// GetByID loads an assignment regardless of whether it is still open.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// GetOpenByUser returns a user's open assignments, primary first.
func (s *Store) GetOpenByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}})
	cursor, err := s.c.Find(ctx, open(bson.M{"user_id": userID}), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Assignment
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	// Primary first, then newest start date.
	for i, a := range list {
		if a.AssignmentType == models.AssignmentPrimary && i != 0 {
			list[0], list[i] = list[i], list[0]
			break
		}
	}
	return list, nil
}

// GetOpenByUnit returns the open assignments attached to a unit.
func (s *Store) GetOpenByUnit(ctx context.Context, unitID primitive.ObjectID) ([]models.Assignment, error) {
	cursor, err := s.c.Find(ctx, open(bson.M{"unit_id": unitID}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Assignment
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetHistoryByUser returns every assignment a user has held, newest first.
func (s *Store) GetHistoryByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}})
	cursor, err := s.c.Find(ctx, bson.M{"user_id": userID, "is_deleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Assignment
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
