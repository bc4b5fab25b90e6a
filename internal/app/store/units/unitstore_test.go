package unitstore_test

import (
	"errors"
	"testing"

	unitstore "github.com/Deepak-cell311/GreenBook/internal/app/store/units"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/Deepak-cell311/GreenBook/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Unit{
		Name:      "Alpha Company",
		UnitLevel: hierarchy.LevelCompany,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.ReferralCode == "" {
		t.Error("expected a referral code to be generated")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_BadLevel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Unit{Name: "Bad", UnitLevel: "Regiment"})
	if !errors.Is(err, unitstore.ErrBadLevel) {
		t.Errorf("expected ErrBadLevel, got %v", err)
	}
}

func TestStore_Create_ParentMustBeHigher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	squad, err := store.Create(ctx, models.Unit{Name: "1st Squad", UnitLevel: hierarchy.LevelSquad})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	// A platoon cannot sit under a squad.
	_, err = store.Create(ctx, models.Unit{
		Name:      "1st Platoon",
		UnitLevel: hierarchy.LevelPlatoon,
		ParentID:  &squad.ID,
	})
	if !errors.Is(err, unitstore.ErrInvalidParent) {
		t.Errorf("expected ErrInvalidParent, got %v", err)
	}

	// A team under a squad is fine.
	team, err := store.Create(ctx, models.Unit{
		Name:      "Alpha Team",
		UnitLevel: hierarchy.LevelTeam,
		ParentID:  &squad.ID,
	})
	if err != nil {
		t.Fatalf("create team under squad: %v", err)
	}
	if team.ParentID == nil || *team.ParentID != squad.ID {
		t.Errorf("team parent = %v, want %v", team.ParentID, squad.ID)
	}
}

func TestStore_Create_MissingParent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ghost := primitive.NewObjectID()
	_, err := store.Create(ctx, models.Unit{
		Name:      "Orphan Team",
		UnitLevel: hierarchy.LevelTeam,
		ParentID:  &ghost,
	})
	if !errors.Is(err, unitstore.ErrInvalidParent) {
		t.Errorf("expected ErrInvalidParent, got %v", err)
	}
}

func TestStore_GetByReferralCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Unit{Name: "Bravo Company", UnitLevel: hierarchy.LevelCompany})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByReferralCode(ctx, created.ReferralCode)
	if err != nil {
		t.Fatalf("GetByReferralCode failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got unit %v, want %v", got.ID, created.ID)
	}

	if _, err := store.GetByReferralCode(ctx, "no-such-code"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown code, got %v", err)
	}
}

func TestStore_SearchByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Unit{Name: "Headquarters Company", UnitLevel: hierarchy.LevelCompany}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Unit{Name: "Charlie Company", UnitLevel: hierarchy.LevelCompany}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Case-insensitive substring match.
	got, err := store.SearchByName(ctx, "headquarters")
	if err != nil {
		t.Fatalf("SearchByName failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
}

func TestStore_Reparent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	battalion, _ := store.Create(ctx, models.Unit{Name: "1-12 IN", UnitLevel: hierarchy.LevelBattalion})
	company, _ := store.Create(ctx, models.Unit{Name: "Alpha", UnitLevel: hierarchy.LevelCompany, ParentID: &battalion.ID})
	platoon, err := store.Create(ctx, models.Unit{Name: "1st Platoon", UnitLevel: hierarchy.LevelPlatoon, ParentID: &company.ID})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Move the platoon directly under the battalion.
	if err := store.Reparent(ctx, platoon.ID, &battalion.ID); err != nil {
		t.Fatalf("Reparent failed: %v", err)
	}
	got, _ := store.GetByID(ctx, platoon.ID)
	if got.ParentID == nil || *got.ParentID != battalion.ID {
		t.Errorf("parent = %v, want %v", got.ParentID, battalion.ID)
	}

	// Detach it entirely.
	if err := store.Reparent(ctx, platoon.ID, nil); err != nil {
		t.Fatalf("Reparent to nil failed: %v", err)
	}
	got, _ = store.GetByID(ctx, platoon.ID)
	if got.ParentID != nil {
		t.Errorf("expected nil parent after detach, got %v", got.ParentID)
	}
}

func TestStore_Reparent_RejectsCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	battalion, _ := store.Create(ctx, models.Unit{Name: "2-12 IN", UnitLevel: hierarchy.LevelBattalion})
	company, _ := store.Create(ctx, models.Unit{Name: "Bravo", UnitLevel: hierarchy.LevelCompany, ParentID: &battalion.ID})
	platoon, err := store.Create(ctx, models.Unit{Name: "2nd Platoon", UnitLevel: hierarchy.LevelPlatoon, ParentID: &company.ID})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// The battalion cannot move under its own descendant.
	err = store.Reparent(ctx, battalion.ID, &platoon.ID)
	if !errors.Is(err, unitstore.ErrInvalidParent) && !errors.Is(err, unitstore.ErrParentIsDescendant) {
		t.Errorf("expected a parent rejection, got %v", err)
	}
}

func TestStore_SoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := unitstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit, err := store.Create(ctx, models.Unit{Name: "Delta Company", UnitLevel: hierarchy.LevelCompany})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SoftDelete(ctx, unit.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, unit.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected deleted unit to be hidden, got %v", err)
	}

	// Deleting again reports not found.
	if err := store.SoftDelete(ctx, unit.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments on double delete, got %v", err)
	}
}
