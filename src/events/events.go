// Package events publishes household change notifications so other services
// (notifications, sync workers) can react to ledger and task changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
	RecurringCreated   Type = "recurring.created"
	RecurringUpdated   Type = "recurring.updated"
	RecurringDeleted   Type = "recurring.deleted"
	CategoryChanged    Type = "category.changed"
	TaskCreated        Type = "task.created"
	TaskUpdated        Type = "task.updated"
	TaskDeleted        Type = "task.deleted"
	InvitationCreated  Type = "invitation.created"
	InvitationAccepted Type = "invitation.accepted"
	MemberJoined       Type = "household.member_joined"
)

type Event struct {
	ID          uuid.UUID  `json:"id"`
	Type        Type       `json:"type"`
	HouseholdID uuid.UUID  `json:"household_id"`
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	ActorID     uuid.UUID  `json:"actor_id"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

func New(t Type, householdID, actorID uuid.UUID, entityID *uuid.UUID) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		HouseholdID: householdID,
		EntityID:    entityID,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error { return nil }
