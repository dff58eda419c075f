// Package audit defines the append-only AuditRecord and the actor context
// every core operation is invoked with.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action is the closed set of audit actions.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionMerge  Action = "MERGE"
	ActionLink   Action = "LINK"
	ActionUnlink Action = "UNLINK"
)

// ActorContext carries who/where/how for an operation. Absent fields default
// to the zero value; the writer applies the "system" default for UserID.
type ActorContext struct {
	UserID        string
	SourceAddress string
	UserAgent     string
}

// DefaultActorContext is applied when no actor context is supplied.
func DefaultActorContext() ActorContext {
	return ActorContext{UserID: "system"}
}

// Record is one immutable audit entry.
type Record struct {
	ID            uuid.UUID
	Timestamp     time.Time
	Actor         ActorContext
	Action        Action
	EntityType    string
	EntityID      uuid.UUID
	Before        []byte // structured document (JSON), optional
	After         []byte // structured document (JSON), optional
	SourceAddress *string
	UserAgent     *string
}
