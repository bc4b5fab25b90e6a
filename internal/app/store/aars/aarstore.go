// internal/app/store/aars/aarstore.go
package aarstore

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
	// ErrEventNotFound is returned when creating an AAR for a missing event.
	ErrEventNotFound = errors.New("the referenced event does not exist")
	errNoItems       = errors.New("an AAR needs at least one sustain, improve, or action item")
)

// EventChecker verifies the event an AAR points at. Satisfied by the
// event store.
type EventChecker interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
}

type Store struct {
	c      *mongo.Collection
	events EventChecker
}

func New(db *mongo.Database, events EventChecker) *Store {
	return &Store{c: db.Collection("aars"), events: events}
}

func notDeleted(filter bson.M) bson.M {
	filter["is_deleted"] = false
	return filter
}

// Create inserts an after-action review. The referenced event must exist.
func (s *Store) Create(ctx context.Context, a models.AAR) (models.AAR, error) {
	if len(a.SustainItems)+len(a.ImproveItems)+len(a.ActionItems) == 0 {
		return models.AAR{}, errNoItems
	}
	if _, err := s.events.GetByID(ctx, a.EventID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.AAR{}, ErrEventNotFound
		}
		return models.AAR{}, err
	}

	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	for _, items := range [][]models.AARItem{a.SustainItems, a.ImproveItems, a.ActionItems} {
		for i := range items {
			if items[i].CreatedAt.IsZero() {
				items[i].CreatedAt = now
			}
		}
	}

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.AAR{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AAR, error) {
	var a models.AAR
	if err := s.c.FindOne(ctx, notDeleted(bson.M{"_id": id})).Decode(&a); err != nil {
		return models.AAR{}, err
	}
	return a, nil
}

// GetByEvent returns the AARs filed against one event, newest first.
func (s *Store) GetByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.AAR, error) {
	return s.find(ctx, notDeleted(bson.M{"event_id": eventID}))
}

// GetByUnits returns the AARs filed by any of the given units, newest
// first. This is the feed the analysis endpoints run over.
func (s *Store) GetByUnits(ctx context.Context, unitIDs []primitive.ObjectID) ([]models.AAR, error) {
	if len(unitIDs) == 0 {
		return []models.AAR{}, nil
	}
	return s.find(ctx, notDeleted(bson.M{"unit_id": bson.M{"$in": unitIDs}}))
}

// GetByAuthor returns the AARs a user has filed, newest first.
func (s *Store) GetByAuthor(ctx context.Context, userID primitive.ObjectID) ([]models.AAR, error) {
	return s.find(ctx, notDeleted(bson.M{"created_by": userID}))
}

// CountByEvent reports how many AARs an event has collected.
func (s *Store) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, notDeleted(bson.M{"event_id": eventID}))
}

// SoftDelete hides an AAR from feeds and analysis.
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

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.AAR, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var aars []models.AAR
	if err := cursor.All(ctx, &aars); err != nil {
		return nil, err
	}
	return aars, nil
}
