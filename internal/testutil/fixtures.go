// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures inserts test documents directly, bypassing store validation,
// so tests can construct exactly the state they need.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUnit inserts a unit at the given level. A nil parentID makes it a
// top-level unit.
func (f *Fixtures) CreateUnit(ctx context.Context, name, level string, parentID *primitive.ObjectID) models.Unit {
	f.t.Helper()

	now := time.Now().UTC()
	unit := models.Unit{
		ID:           primitive.NewObjectID(),
		Name:         name,
		UnitLevel:    level,
		ParentID:     parentID,
		ReferralCode: uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("units").InsertOne(ctx, unit); err != nil {
		f.t.Fatalf("insert test unit: %v", err)
	}
	return unit
}

// CreateUser inserts a user with password "password".
func (f *Fixtures) CreateUser(ctx context.Context, username, role string, unitID primitive.ObjectID) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash test password: %v", err)
	}
	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         "Test " + username,
		Role:         role,
		UnitID:       unitID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("insert test user: %v", err)
	}
	return user
}

// CreateAssignment inserts an open assignment of the given type.
func (f *Fixtures) CreateAssignment(ctx context.Context, userID, unitID primitive.ObjectID, assignmentType string) models.Assignment {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Assignment{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		UnitID:         unitID,
		AssignmentType: assignmentType,
		StartDate:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("insert test assignment: %v", err)
	}
	return a
}

// CreateEvent inserts a training event owned by the unit.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, unitID, createdBy primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		UnitID:    unitID,
		CreatedBy: createdBy,
		Step:      models.StepRiskAssessment,
		Date:      now,
		EventType: "training",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("insert test event: %v", err)
	}
	return e
}

// CreateAAR inserts an AAR with one item in each list.
func (f *Fixtures) CreateAAR(ctx context.Context, eventID, unitID, createdBy primitive.ObjectID) models.AAR {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.AAR{
		ID:           primitive.NewObjectID(),
		EventID:      eventID,
		UnitID:       unitID,
		CreatedBy:    createdBy,
		SustainItems: []models.AARItem{{Text: "Communication was effective", CreatedAt: now}},
		ImproveItems: []models.AARItem{{Text: "Equipment staging was slow", CreatedAt: now}},
		ActionItems:  []models.AARItem{{Text: "Rehearse load plans before movement", CreatedAt: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("aars").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("insert test aar: %v", err)
	}
	return a
}
