package domain

import (
	"time"
)

type Connection struct {
	ID               string           `json:"id" db:"id"`
	FromPersonID     string           `json:"from_person_id" db:"from_person_id"`
	ToPersonID       string           `json:"to_person_id" db:"to_person_id"`
	RelationshipType RelationshipType `json:"relationship_type" db:"relationship_type"`
	FamilyTreeID     *string          `json:"family_tree_id,omitempty" db:"family_tree_id"`
	GroupID          *string          `json:"group_id,omitempty" db:"group_id"`
	OrganizationID   *string          `json:"organization_id,omitempty" db:"organization_id"`
	Notes            *string          `json:"notes,omitempty" db:"notes"`
	Metadata         Attributes       `json:"metadata" db:"metadata"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

type CreateConnectionInput struct {
	FromPersonID     string           `json:"from_person_id"`
	ToPersonID       string           `json:"to_person_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	FamilyTreeID     *string          `json:"family_tree_id,omitempty"`
	GroupID          *string          `json:"group_id,omitempty"`
	OrganizationID   *string          `json:"organization_id,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	Metadata         Attributes       `json:"metadata"`
}

type UpdateConnectionInput struct {
	RelationshipType *RelationshipType `json:"relationship_type,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	Metadata         *Attributes       `json:"metadata,omitempty"`
}

type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// PersonConnection is a connection seen from one person's side.
type PersonConnection struct {
	Connection
	Direction       Direction `json:"direction"`
	OtherPersonID   string    `json:"other_person_id"`
	OtherPersonName string    `json:"other_person_name"`
}

// ReciprocalOutcome records what happened to the mirrored edge of a write.
// Err is informational only; the primary write has already succeeded.
type ReciprocalOutcome struct {
	Connection *Connection `json:"connection,omitempty"`
	Err        error       `json:"-"`
	Error      string      `json:"error,omitempty"`
}

type ConnectionResult struct {
	Primary    *Connection        `json:"primary"`
	Reciprocal *ReciprocalOutcome `json:"reciprocal,omitempty"`
}
