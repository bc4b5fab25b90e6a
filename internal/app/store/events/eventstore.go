// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrBadStep    = errors.New("step must be between 1 and 8")
	errEmptyTitle = errors.New("title is required")
	errBadEndDate = errors.New("end_date must not precede the start date")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

func notDeleted(filter bson.M) bson.M {
	filter["is_deleted"] = false
	return filter
}

// Create inserts a new training event. A zero step defaults to risk
// assessment; participant lists are deduplicated on the way in.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return models.Event{}, errEmptyTitle
	}
	if e.Step == 0 {
		e.Step = models.StepRiskAssessment
	}
	if e.Step < models.StepRiskAssessment || e.Step > models.StepCertification {
		return models.Event{}, ErrBadStep
	}
	if e.IsMultiDayEvent && e.EndDate != nil && e.EndDate.Before(e.Date) {
		return models.Event{}, errBadEndDate
	}
	e.Participants = dedupe(e.Participants)
	e.ParticipatingUnits = dedupe(e.ParticipatingUnits)

	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, notDeleted(bson.M{"_id": id})).Decode(&e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// GetByUnits returns events owned by or shared with any of the given
// units, newest first.
func (s *Store) GetByUnits(ctx context.Context, unitIDs []primitive.ObjectID) ([]models.Event, error) {
	if len(unitIDs) == 0 {
		return []models.Event{}, nil
	}
	filter := notDeleted(bson.M{"$or": bson.A{
		bson.M{"unit_id": bson.M{"$in": unitIDs}},
		bson.M{"participating_units": bson.M{"$in": unitIDs}},
	}})
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetByParticipant returns events a user is listed on, newest first.
func (s *Store) GetByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.c.Find(ctx, notDeleted(bson.M{"participants": userID}), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SetStep moves an event to a lifecycle step.
func (s *Store) SetStep(ctx context.Context, id primitive.ObjectID, step int) error {
	if step < models.StepRiskAssessment || step > models.StepCertification {
		return ErrBadStep
	}
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"step":       step,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStepNote records the notes and completion date for one lifecycle step.
func (s *Store) SetStepNote(ctx context.Context, id primitive.ObjectID, step int, note models.StepNote) error {
	if step < models.StepRiskAssessment || step > models.StepCertification {
		return ErrBadStep
	}
	key := "step_notes." + strconv.Itoa(step)
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": bson.M{
		key:          note,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddParticipants appends users to an event without introducing duplicates.
func (s *Store) AddParticipants(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{
		"$addToSet": bson.M{"participants": bson.M{"$each": dedupe(userIDs)}},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddParticipatingUnits shares an event with additional units.
func (s *Store) AddParticipatingUnits(ctx context.Context, id primitive.ObjectID, unitIDs []primitive.ObjectID) error {
	if len(unitIDs) == 0 {
		return nil
	}
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{
		"$addToSet": bson.M{"participating_units": bson.M{"$each": dedupe(unitIDs)}},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateInfo holds the editable event fields.
type UpdateInfo struct {
	Title              string
	Location           string
	Objectives         string
	MissionStatement   string
	ConceptOfOperation string
	Resources          string
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd UpdateInfo) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if strings.TrimSpace(upd.Title) != "" {
		set["title"] = strings.TrimSpace(upd.Title)
	}
	set["location"] = upd.Location
	set["objectives"] = upd.Objectives
	set["mission_statement"] = upd.MissionStatement
	set["concept_of_operation"] = upd.ConceptOfOperation
	set["resources"] = upd.Resources

	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftDelete hides an event while keeping its AARs queryable.
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

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
