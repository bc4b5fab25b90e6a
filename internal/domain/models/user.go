// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents soldiers, unit leadership, and the system admin.
//
// NOTE:
//   - UnitID is the user's home unit of record. Additional memberships
//     live in the assignments collection; use that to discover attached
//     and temporary units.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Rank         string             `bson:"rank" json:"rank"`
	Role         string             `bson:"role" json:"role"` // one of hierarchy.Roles
	UnitID       primitive.ObjectID `bson:"unit_id" json:"unit_id"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	IsDeleted bool       `bson:"is_deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
}
