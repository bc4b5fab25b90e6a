package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/Deepak-cell311/GreenBook/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "1st Squad", hierarchy.LevelSquad, nil)

	created, err := store.Create(ctx, models.User{
		Username: "  jdoe  ",
		Name:     "J. Doe",
		Role:     hierarchy.RoleSoldier,
		UnitID:   unit.ID,
	}, "hunter2hunter2")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Username != "jdoe" {
		t.Errorf("username = %q, want trimmed %q", created.Username, "jdoe")
	}
	if created.PasswordHash == "" || created.PasswordHash == "hunter2hunter2" {
		t.Error("expected a bcrypt hash, not the raw password")
	}
	if !store.VerifyPassword(created, "hunter2hunter2") {
		t.Error("VerifyPassword rejected the correct password")
	}
	if store.VerifyPassword(created, "wrong") {
		t.Error("VerifyPassword accepted a wrong password")
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The duplicate check relies on the unique index EnsureSchema builds.
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		t.Fatalf("index setup: %v", err)
	}

	unit := fixtures.CreateUnit(ctx, "2nd Squad", hierarchy.LevelSquad, nil)
	fixtures.CreateUser(ctx, "taken", hierarchy.RoleSoldier, unit.ID)

	_, err := store.Create(ctx, models.User{
		Username: "taken",
		Role:     hierarchy.RoleSoldier,
		UnitID:   unit.ID,
	}, "password12345")
	if !errors.Is(err, userstore.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		Username: "general",
		Role:     "General of the Army",
	}, "password12345")
	if err == nil {
		t.Fatal("expected an error for an unknown role")
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "3rd Squad", hierarchy.LevelSquad, nil)
	user := fixtures.CreateUser(ctx, "editor", hierarchy.RoleSoldier, unit.ID)

	err := store.UpdateProfile(ctx, user.ID, userstore.ProfileUpdate{
		Name: "New Name",
		Rank: "SPC",
		Bio:  "Mortars.",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "New Name" || got.Rank != "SPC" || got.Bio != "Mortars." {
		t.Errorf("profile = %q/%q/%q", got.Name, got.Rank, got.Bio)
	}

	// A blank bio clears the field.
	if err := store.UpdateProfile(ctx, user.ID, userstore.ProfileUpdate{Name: "New Name", Rank: "SPC"}); err != nil {
		t.Fatalf("UpdateProfile (clear bio) failed: %v", err)
	}
	got, _ = store.GetByID(ctx, user.ID)
	if got.Bio != "" {
		t.Errorf("bio = %q, want empty", got.Bio)
	}
}

func TestStore_SetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "4th Squad", hierarchy.LevelSquad, nil)
	user := fixtures.CreateUser(ctx, "riser", hierarchy.RoleSoldier, unit.ID)

	if err := store.SetRole(ctx, user.ID, hierarchy.RoleSquadLeader); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	got, _ := store.GetByID(ctx, user.ID)
	if got.Role != hierarchy.RoleSquadLeader {
		t.Errorf("role = %q, want %q", got.Role, hierarchy.RoleSquadLeader)
	}

	if err := store.SetRole(ctx, user.ID, "Warlord"); err == nil {
		t.Error("expected an error for an unknown role")
	}
}

func TestStore_SoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "5th Squad", hierarchy.LevelSquad, nil)
	user := fixtures.CreateUser(ctx, "leaver", hierarchy.RoleSoldier, unit.ID)

	if err := store.SoftDelete(ctx, user.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, user.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected deleted user to be hidden, got %v", err)
	}
	if _, err := store.GetByUsername(ctx, "leaver"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected deleted user to be hidden by username, got %v", err)
	}
}
