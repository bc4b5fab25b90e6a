// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	aarstore "github.com/Deepak-cell311/GreenBook/internal/app/store/aars"
	assignmentstore "github.com/Deepak-cell311/GreenBook/internal/app/store/assignments"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/audit"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/directory"
	eventstore "github.com/Deepak-cell311/GreenBook/internal/app/store/events"
	notificationstore "github.com/Deepak-cell311/GreenBook/internal/app/store/notifications"
	unitstore "github.com/Deepak-cell311/GreenBook/internal/app/store/units"
	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. Stores are
// constructed once in ConnectDB and shared by every feature.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Units         *unitstore.Store
	Users         *userstore.Store
	Assignments   *assignmentstore.Store
	Events        *eventstore.Store
	AARs          *aarstore.Store
	Notifications *notificationstore.Store
	Audit         *audit.Store

	// Directory joins the unit and user stores for the access engine.
	Directory *directory.Directory
}
