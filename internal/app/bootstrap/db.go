// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	aarstore "github.com/Deepak-cell311/GreenBook/internal/app/store/aars"
	assignmentstore "github.com/Deepak-cell311/GreenBook/internal/app/store/assignments"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/audit"
	"github.com/Deepak-cell311/GreenBook/internal/app/store/directory"
	eventstore "github.com/Deepak-cell311/GreenBook/internal/app/store/events"
	notificationstore "github.com/Deepak-cell311/GreenBook/internal/app/store/notifications"
	unitstore "github.com/Deepak-cell311/GreenBook/internal/app/store/units"
	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"github.com/Deepak-cell311/GreenBook/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and builds the stores
// every feature shares.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	units := unitstore.New(db)
	users := userstore.New(db)
	events := eventstore.New(db)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,

		Units:         units,
		Users:         users,
		Assignments:   assignmentstore.New(db, users),
		Events:        events,
		AARs:          aarstore.New(db, events),
		Notifications: notificationstore.New(db),
		Audit:         audit.New(db),

		Directory: directory.New(units, users),
	}, nil
}

// EnsureSchema creates the indexes the stores rely on. All index builds
// are idempotent; Mongo ignores creates that already exist.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Usernames stay unique across soft-deleted accounts too, so a deleted
	// username cannot be silently reclaimed.
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	if _, err := db.Collection("units").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "referral_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("units indexes: %w", err)
	}

	if _, err := db.Collection("assignments").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_date", Value: -1}}},
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "end_date", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("assignments indexes: %w", err)
	}

	if _, err := db.Collection("events").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "participants", Value: 1}}},
		{Keys: bson.D{{Key: "participating_units", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}

	if _, err := db.Collection("aars").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}},
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("aars indexes: %w", err)
	}

	if _, err := db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("notifications index: %w", err)
	}

	if err := deps.Audit.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}

	logger.Info("database schema ensured")
	return nil
}
