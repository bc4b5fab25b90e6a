package eventstore_test

import (
	"errors"
	"testing"
	"time"

	eventstore "github.com/Deepak-cell311/GreenBook/internal/app/store/events"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/Deepak-cell311/GreenBook/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "1st Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "planner", hierarchy.RolePlatoonSergeant, unit.ID)

	dup := author.ID
	created, err := store.Create(ctx, models.Event{
		Title:        "  Range Week  ",
		UnitID:       unit.ID,
		CreatedBy:    author.ID,
		Date:         time.Now().UTC().Add(72 * time.Hour),
		EventType:    "training",
		Participants: []primitive.ObjectID{author.ID, dup},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Title != "Range Week" {
		t.Errorf("title = %q, want trimmed %q", created.Title, "Range Week")
	}
	if created.Step != models.StepRiskAssessment {
		t.Errorf("step = %d, want default %d", created.Step, models.StepRiskAssessment)
	}
	if len(created.Participants) != 1 {
		t.Errorf("participants = %d, want deduplicated 1", len(created.Participants))
	}
}

func TestStore_Create_BadStep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "2nd Platoon", hierarchy.LevelPlatoon, nil)

	_, err := store.Create(ctx, models.Event{
		Title:     "Bad Step",
		UnitID:    unit.ID,
		Step:      9,
		Date:      time.Now().UTC(),
		EventType: "training",
	})
	if !errors.Is(err, eventstore.ErrBadStep) {
		t.Errorf("expected ErrBadStep, got %v", err)
	}
}

func TestStore_SetStep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "3rd Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "stepper", hierarchy.RolePlatoonLeader, unit.ID)
	event := fixtures.CreateEvent(ctx, "Land Nav", unit.ID, author.ID)

	if err := store.SetStep(ctx, event.ID, models.StepAAR); err != nil {
		t.Fatalf("SetStep failed: %v", err)
	}
	got, err := store.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Step != models.StepAAR {
		t.Errorf("step = %d, want %d", got.Step, models.StepAAR)
	}

	if err := store.SetStep(ctx, event.ID, 0); !errors.Is(err, eventstore.ErrBadStep) {
		t.Errorf("expected ErrBadStep for step 0, got %v", err)
	}
	if err := store.SetStep(ctx, primitive.NewObjectID(), models.StepAAR); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown event, got %v", err)
	}
}

func TestStore_SetStepNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "4th Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "noter", hierarchy.RolePlatoonSergeant, unit.ID)
	event := fixtures.CreateEvent(ctx, "CLS Class", unit.ID, author.ID)

	when := time.Now().UTC().Truncate(time.Millisecond)
	note := models.StepNote{Notes: "Medics confirmed.", Date: &when}
	if err := store.SetStepNote(ctx, event.ID, models.StepPreparation, note); err != nil {
		t.Fatalf("SetStepNote failed: %v", err)
	}

	got, err := store.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	saved, ok := got.StepNotes["3"]
	if !ok {
		t.Fatalf("step note not stored under key \"3\": %v", got.StepNotes)
	}
	if saved.Notes != "Medics confirmed." {
		t.Errorf("note = %q", saved.Notes)
	}
}

func TestStore_AddParticipants_NoDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "5th Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "adder", hierarchy.RolePlatoonLeader, unit.ID)
	soldier := fixtures.CreateUser(ctx, "joiner", hierarchy.RoleSoldier, unit.ID)
	event := fixtures.CreateEvent(ctx, "Ruck March", unit.ID, author.ID)

	if err := store.AddParticipants(ctx, event.ID, []primitive.ObjectID{soldier.ID}); err != nil {
		t.Fatalf("AddParticipants failed: %v", err)
	}
	// Adding the same user again must not duplicate them.
	if err := store.AddParticipants(ctx, event.ID, []primitive.ObjectID{soldier.ID}); err != nil {
		t.Fatalf("second AddParticipants failed: %v", err)
	}

	got, err := store.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	count := 0
	for _, id := range got.Participants {
		if id == soldier.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("soldier listed %d times, want 1", count)
	}
}

func TestStore_GetByUnits_IncludesParticipatingUnits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUnit(ctx, "Alpha Company", hierarchy.LevelCompany, nil)
	guest := fixtures.CreateUnit(ctx, "Bravo Company", hierarchy.LevelCompany, nil)
	author := fixtures.CreateUser(ctx, "host", hierarchy.RoleCommander, owner.ID)
	event := fixtures.CreateEvent(ctx, "Joint FTX", owner.ID, author.ID)

	if err := store.AddParticipatingUnits(ctx, event.ID, []primitive.ObjectID{guest.ID}); err != nil {
		t.Fatalf("AddParticipatingUnits failed: %v", err)
	}

	// The guest unit sees the event through the shared-unit list.
	got, err := store.GetByUnits(ctx, []primitive.ObjectID{guest.ID})
	if err != nil {
		t.Fatalf("GetByUnits failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != event.ID {
		t.Errorf("got %d events, want the shared one", len(got))
	}

	// Empty input returns an empty slice, not everything.
	none, err := store.GetByUnits(ctx, nil)
	if err != nil {
		t.Fatalf("GetByUnits(nil) failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d events for no units, want 0", len(none))
	}
}

func TestStore_SoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "6th Platoon", hierarchy.LevelPlatoon, nil)
	author := fixtures.CreateUser(ctx, "remover", hierarchy.RolePlatoonLeader, unit.ID)
	event := fixtures.CreateEvent(ctx, "Cancelled Range", unit.ID, author.ID)

	if err := store.SoftDelete(ctx, event.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, event.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected deleted event to be hidden, got %v", err)
	}
	if err := store.SoftDelete(ctx, event.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments on double delete, got %v", err)
	}
}
