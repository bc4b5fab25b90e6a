// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment types. A user holds at most one open PRIMARY assignment;
// promoting a new PRIMARY demotes the previous one to ATTACHED.
const (
	AssignmentPrimary    = "PRIMARY"
	AssignmentAttached   = "ATTACHED"
	AssignmentTemporary  = "TEMPORARY"
	AssignmentDualHatted = "DUAL_HATTED"
)

// Assignment links a user to a unit for a span of time. A nil EndDate
// means the assignment is ongoing. Ending an assignment sets EndDate
// rather than deleting the record.
type Assignment struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"user_id"`
	UnitID         primitive.ObjectID  `bson:"unit_id" json:"unit_id"`
	AssignmentType string              `bson:"assignment_type" json:"assignment_type"`
	LeadershipRole string              `bson:"leadership_role,omitempty" json:"leadership_role,omitempty"`
	AssignedBy     *primitive.ObjectID `bson:"assigned_by,omitempty" json:"assigned_by,omitempty"`
	StartDate      time.Time           `bson:"start_date" json:"start_date"`
	EndDate        *time.Time          `bson:"end_date,omitempty" json:"end_date,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	IsDeleted bool       `bson:"is_deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
}

// LeadershipRoles lists the recognized leadership labels per unit level.
var LeadershipRoles = map[string][]string{
	"Company": {"Commander", "Executive Officer", "First Sergeant", "Company Admin"},
	"Platoon": {"Platoon Leader", "Platoon Sergeant", "Platoon Admin"},
	"Squad":   {"Squad Leader", "Assistant Squad Leader"},
	"Team":    {"Team Leader"},
}
