// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Training lifecycle steps. Every event moves through these in order.
const (
	StepRiskAssessment = 1
	StepPlanning       = 2
	StepPreparation    = 3
	StepRehearsal      = 4
	StepExecution      = 5
	StepAAR            = 6
	StepRetraining     = 7
	StepCertification  = 8
)

// StepNote carries the free-text notes and completion date for one of the
// eight lifecycle steps.
type StepNote struct {
	Notes string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Date  *time.Time `bson:"date,omitempty" json:"date,omitempty"`
}

// Event is a scheduled training activity owned by a unit.
//
// Invariants: Step is within 1–8 and Participants holds no duplicates.
type Event struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title              string               `bson:"title" json:"title"`
	UnitID             primitive.ObjectID   `bson:"unit_id" json:"unit_id"`
	CreatedBy          primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Step               int                  `bson:"step" json:"step"`
	Date               time.Time            `bson:"date" json:"date"`
	IsMultiDayEvent    bool                 `bson:"is_multi_day_event" json:"is_multi_day_event"`
	EndDate            *time.Time           `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Location           string               `bson:"location" json:"location"`
	Objectives         string               `bson:"objectives" json:"objectives"`
	MissionStatement   string               `bson:"mission_statement,omitempty" json:"mission_statement,omitempty"`
	ConceptOfOperation string               `bson:"concept_of_operation,omitempty" json:"concept_of_operation,omitempty"`
	Resources          string               `bson:"resources,omitempty" json:"resources,omitempty"`
	EventType          string               `bson:"event_type" json:"event_type"` // training | mission | exercise
	Participants       []primitive.ObjectID `bson:"participants" json:"participants"`
	ParticipatingUnits []primitive.ObjectID `bson:"participating_units" json:"participating_units"`
	NotifyParticipants bool                 `bson:"notify_participants" json:"notify_participants"`
	StepNotes          map[string]StepNote  `bson:"step_notes,omitempty" json:"step_notes,omitempty"` // keyed "1".."8"

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	IsDeleted bool       `bson:"is_deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
}
