// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/hierarchy"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateUsername is returned when creating a user with a username that already exists.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	errBadRole           = errors.New("unrecognized military role")
	errEmptyUsername     = errors.New("username is required")
	errEmptyPassword     = errors.New("password is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func notDeleted(filter bson.M) bson.M {
	filter["is_deleted"] = false
	return filter
}

// Create inserts a new user with a bcrypt hash of the supplied password.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return models.User{}, errEmptyUsername
	}
	if password == "" {
		return models.User{}, errEmptyPassword
	}
	if !hierarchy.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, notDeleted(bson.M{"_id": id})).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByUsername looks up a user by username. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	filter := notDeleted(bson.M{"username": strings.TrimSpace(username)})
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByUnit returns the live members of a unit, sorted by name.
func (s *Store) GetByUnit(ctx context.Context, unitID primitive.ObjectID) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.c.Find(ctx, notDeleted(bson.M{"unit_id": unitID}), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (s *Store) VerifyPassword(u models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ProfileUpdate holds the fields a user may edit on their own profile.
type ProfileUpdate struct {
	Name string
	Rank string
	Bio  string
}

// UpdateProfile writes the editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if strings.TrimSpace(upd.Name) != "" {
		set["name"] = strings.TrimSpace(upd.Name)
	}
	if strings.TrimSpace(upd.Rank) != "" {
		set["rank"] = strings.TrimSpace(upd.Rank)
	}
	// Bio can be cleared (set to empty)
	set["bio"] = upd.Bio

	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRole changes a user's role. The role must be a recognized military role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !hierarchy.ValidRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"role":       role,
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

// SetUnit re-homes a user to a different unit of record.
func (s *Store) SetUnit(ctx context.Context, id, unitID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"unit_id":    unitID,
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

// SetPassword replaces the stored password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	if password == "" {
		return errEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"password_hash": string(hash),
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftDelete hides a user while keeping AAR and event history intact.
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
