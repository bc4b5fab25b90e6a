// internal/domain/models/unit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unit is a node in the organizational forest. A unit has at most one
// parent, and the parent must sit strictly higher in the level ordering
// (Team < Squad < Platoon < Company < Battalion).
//
// Units are never hard-deleted; IsDeleted hides them while preserving
// event and AAR history.
type Unit struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	UnitLevel    string              `bson:"unit_level" json:"unit_level"` // Team | Squad | Platoon | Company | Battalion
	ParentID     *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	ReferralCode string              `bson:"referral_code" json:"referral_code"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	IsDeleted bool       `bson:"is_deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
}
