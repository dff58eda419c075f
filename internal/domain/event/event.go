// Package event defines the transient, wire-only patient lifecycle events
// fanned out by the event publisher. Events are never the store of record;
// the audit stream is (see internal/auditlog).
package event

import (
	"time"

	"github.com/google/uuid"

	"mpi-core/internal/domain/patient"
)

// Kind discriminates the PatientEvent variant.
type Kind string

const (
	KindCreated  Kind = "created"
	KindUpdated  Kind = "updated"
	KindDeleted  Kind = "deleted"
	KindMerged   Kind = "merged"
	KindLinked   Kind = "linked"
	KindUnlinked Kind = "unlinked"
)

// Event is the discriminated union over the six lifecycle variants. Only the
// payload fields of the variant selected by Kind are populated.
type Event struct {
	Kind      Kind
	Timestamp time.Time

	// Created / Updated
	Patient *patient.Patient

	// Deleted
	PatientID uuid.UUID

	// Merged
	Source uuid.UUID
	Dest   uuid.UUID

	// Linked / Unlinked
	A uuid.UUID
	B uuid.UUID
}

// Created builds a Created event.
func Created(p *patient.Patient, ts time.Time) Event {
	return Event{Kind: KindCreated, Timestamp: ts, Patient: p}
}

// Updated builds an Updated event.
func Updated(p *patient.Patient, ts time.Time) Event {
	return Event{Kind: KindUpdated, Timestamp: ts, Patient: p}
}

// Deleted builds a Deleted event.
func Deleted(id uuid.UUID, ts time.Time) Event {
	return Event{Kind: KindDeleted, Timestamp: ts, PatientID: id}
}

// Merged builds a Merged event.
func Merged(src, dst uuid.UUID, ts time.Time) Event {
	return Event{Kind: KindMerged, Timestamp: ts, Source: src, Dest: dst}
}

// Linked builds a Linked event.
func Linked(a, b uuid.UUID, ts time.Time) Event {
	return Event{Kind: KindLinked, Timestamp: ts, A: a, B: b}
}

// Unlinked builds an Unlinked event.
func Unlinked(a, b uuid.UUID, ts time.Time) Event {
	return Event{Kind: KindUnlinked, Timestamp: ts, A: a, B: b}
}

// Subscriber receives published events synchronously, in registration order.
type Subscriber interface {
	Handle(e Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(e Event) error

func (f SubscriberFunc) Handle(e Event) error { return f(e) }
