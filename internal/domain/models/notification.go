// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyAARRequired = "AAR_REQUIRED"
	NotifyEventAdded  = "EVENT_ADDED"
	NotifyUnitChange  = "UNIT_CHANGE"
)

// Notification is an in-app message delivered to a single user.
type Notification struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Title             string              `bson:"title" json:"title"`
	Message           string              `bson:"message" json:"message"`
	Type              string              `bson:"type" json:"type"`
	RelatedEntityID   *primitive.ObjectID `bson:"related_entity_id,omitempty" json:"related_entity_id,omitempty"`
	RelatedEntityType string              `bson:"related_entity_type,omitempty" json:"related_entity_type,omitempty"`
	Read              bool                `bson:"read" json:"read"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
}
