// internal/domain/models/aar.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AARItem is a single free-text observation inside an AAR.
type AARItem struct {
	Text       string    `bson:"text" json:"text"`
	AuthorRank string    `bson:"author_rank,omitempty" json:"author_rank,omitempty"`
	UnitLevel  string    `bson:"unit_level,omitempty" json:"unit_level,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	Tags       []string  `bson:"tags,omitempty" json:"tags,omitempty"`
}

// AAR is an After-Action Review tied to exactly one event and unit.
// The three item lists follow the sustain/improve/action format.
type AAR struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID `bson:"event_id" json:"event_id"`
	UnitID       primitive.ObjectID `bson:"unit_id" json:"unit_id"`
	CreatedBy    primitive.ObjectID `bson:"created_by" json:"created_by"`
	SustainItems []AARItem          `bson:"sustain_items" json:"sustain_items"`
	ImproveItems []AARItem          `bson:"improve_items" json:"improve_items"`
	ActionItems  []AARItem          `bson:"action_items" json:"action_items"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	IsDeleted bool       `bson:"is_deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
}
