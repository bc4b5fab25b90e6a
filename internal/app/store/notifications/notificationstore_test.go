package notificationstore_test

import (
	"errors"
	"testing"

	notificationstore "github.com/Deepak-cell311/GreenBook/internal/app/store/notifications"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"github.com/Deepak-cell311/GreenBook/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "1st Squad", hierarchy.LevelSquad, nil)
	a := fixtures.CreateUser(ctx, "alpha", hierarchy.RoleSoldier, unit.ID)
	b := fixtures.CreateUser(ctx, "bravo", hierarchy.RoleSoldier, unit.ID)

	err := store.CreateMany(ctx, []primitive.ObjectID{a.ID, b.ID}, models.Notification{
		Title:   "AAR required",
		Message: "Submit your AAR for Range Week.",
		Type:    models.NotifyAARRequired,
	})
	if err != nil {
		t.Fatalf("CreateMany failed: %v", err)
	}

	for _, user := range []models.User{a, b} {
		list, err := store.GetByUser(ctx, user.ID, 0)
		if err != nil {
			t.Fatalf("GetByUser(%s) failed: %v", user.Username, err)
		}
		if len(list) != 1 {
			t.Errorf("%s has %d notifications, want 1", user.Username, len(list))
		}
	}
}

func TestStore_MarkRead_ScopedToUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "2nd Squad", hierarchy.LevelSquad, nil)
	owner := fixtures.CreateUser(ctx, "owner", hierarchy.RoleSoldier, unit.ID)
	stranger := fixtures.CreateUser(ctx, "stranger", hierarchy.RoleSoldier, unit.ID)

	n, err := store.Create(ctx, models.Notification{
		UserID:  owner.ID,
		Title:   "Event updated",
		Message: "Land Nav moved to Friday.",
		Type:    models.NotifyEventAdded,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Another user cannot mark someone else's notification read.
	if err := store.MarkRead(ctx, n.ID, stranger.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for foreign user, got %v", err)
	}

	if err := store.MarkRead(ctx, n.ID, owner.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	unread, err := store.CountUnread(ctx, owner.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread = %d, want 0", unread)
	}
}

func TestStore_MarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "3rd Squad", hierarchy.LevelSquad, nil)
	user := fixtures.CreateUser(ctx, "busy", hierarchy.RoleSoldier, unit.ID)

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, models.Notification{
			UserID:  user.ID,
			Title:   "Added to event",
			Message: "You were added to a training event.",
			Type:    models.NotifyEventAdded,
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	updated, err := store.MarkAllRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3", updated)
	}

	unread, err := store.CountUnread(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread = %d, want 0", unread)
	}

	// A second pass has nothing left to update.
	updated, err = store.MarkAllRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("second MarkAllRead failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0", updated)
	}
}

func TestStore_GetByUser_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	unit := fixtures.CreateUnit(ctx, "4th Squad", hierarchy.LevelSquad, nil)
	user := fixtures.CreateUser(ctx, "flooded", hierarchy.RoleSoldier, unit.ID)

	for i := 0; i < 5; i++ {
		if _, err := store.Create(ctx, models.Notification{
			UserID:  user.ID,
			Title:   "Ping",
			Message: "One of many.",
			Type:    models.NotifyEventAdded,
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := store.GetByUser(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d notifications, want limited 2", len(list))
	}
}
