package aarstore_test

import (
	"errors"
	"testing"

	aarstore "github.com/Deepak-cell311/GreenBook/internal/app/store/aars"
	eventstore "github.com/Deepak-cell311/GreenBook/internal/app/store/events"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/Deepak-cell311/GreenBook/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := aarstore.New(db, events)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "1st Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "writer", hierarchy.RoleSoldier, unit.ID)
	event := fixtures.CreateEvent(ctx, "Range Week", unit.ID, author.ID)

	created, err := store.Create(ctx, models.AAR{
		EventID:   event.ID,
		UnitID:    unit.ID,
		CreatedBy: author.ID,
		SustainItems: []models.AARItem{
			{Text: "Ammo resupply worked.", AuthorRank: "SPC", UnitLevel: hierarchy.LevelPlatoon},
		},
		ImproveItems: []models.AARItem{
			{Text: "Comms check before SP.", AuthorRank: "SPC", UnitLevel: hierarchy.LevelPlatoon},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be stamped")
	}

	byEvent, err := store.GetByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByEvent failed: %v", err)
	}
	if len(byEvent) != 1 || byEvent[0].ID != created.ID {
		t.Errorf("got %d AARs for event, want 1", len(byEvent))
	}
}

func TestStore_Create_MissingEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := aarstore.New(db, events)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "2nd Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "orphan", hierarchy.RoleSoldier, unit.ID)

	_, err := store.Create(ctx, models.AAR{
		EventID:      primitive.NewObjectID(),
		UnitID:       unit.ID,
		CreatedBy:    author.ID,
		SustainItems: []models.AARItem{{Text: "n/a"}},
	})
	if !errors.Is(err, aarstore.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestStore_GetByAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := aarstore.New(db, events)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "3rd Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "prolific", hierarchy.RoleSoldier, unit.ID)
	other := fixtures.CreateUser(ctx, "quiet", hierarchy.RoleSoldier, unit.ID)
	event := fixtures.CreateEvent(ctx, "Land Nav", unit.ID, author.ID)

	fixtures.CreateAAR(ctx, event.ID, unit.ID, author.ID)
	fixtures.CreateAAR(ctx, event.ID, unit.ID, author.ID)
	fixtures.CreateAAR(ctx, event.ID, unit.ID, other.ID)

	mine, err := store.GetByAuthor(ctx, author.ID)
	if err != nil {
		t.Fatalf("GetByAuthor failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("got %d AARs, want 2", len(mine))
	}
}

func TestStore_CountByEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := aarstore.New(db, events)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "4th Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "counter", hierarchy.RoleSoldier, unit.ID)
	event := fixtures.CreateEvent(ctx, "Ruck March", unit.ID, author.ID)

	fixtures.CreateAAR(ctx, event.ID, unit.ID, author.ID)
	aar := fixtures.CreateAAR(ctx, event.ID, unit.ID, author.ID)

	n, err := store.CountByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("CountByEvent failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	// Soft-deleted AARs fall out of the count.
	if err := store.SoftDelete(ctx, aar.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	n, err = store.CountByEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("CountByEvent after delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1 after delete", n)
	}
}

func TestStore_SoftDelete_AlreadyDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	events := eventstore.New(db)
	store := aarstore.New(db, events)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "5th Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "deleter", hierarchy.RoleSoldier, unit.ID)
	event := fixtures.CreateEvent(ctx, "CLS Class", unit.ID, author.ID)
	aar := fixtures.CreateAAR(ctx, event.ID, unit.ID, author.ID)

	if err := store.SoftDelete(ctx, aar.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if err := store.SoftDelete(ctx, aar.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments on double delete, got %v", err)
	}
	if _, err := store.GetByID(ctx, aar.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected deleted AAR to be hidden, got %v", err)
	}
}
