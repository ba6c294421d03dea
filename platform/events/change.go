package events

import (
	"context"

	"github.com/google/uuid"
)

// ChangeOp is the kind of mutation a store performed.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// Change is emitted by stores after a committed write so that live views
// (SSE, the AMQP feed) can refresh without polling.
type Change struct {
	BaseEvent
	Entity   string    `json:"entity"`
	Op       ChangeOp  `json:"op"`
	ID       uuid.UUID `json:"id"`
	OwnerID  uuid.UUID `json:"ownerId,omitempty"`
	Snapshot any       `json:"snapshot,omitempty"`
}

// EventName scopes change events per entity, e.g. "change.leads".
func (c Change) EventName() string { return ChangeEventName(c.Entity) }

// ChangeEventName returns the bus topic for changes on entity.
func ChangeEventName(entity string) string { return "change." + entity }

// NewChange builds a change notification stamped with the current time.
func NewChange(entity string, op ChangeOp, id, ownerID uuid.UUID, snapshot any) Change {
	return Change{
		BaseEvent: NewBaseEvent(),
		Entity:    entity,
		Op:        op,
		ID:        id,
		OwnerID:   ownerID,
		Snapshot:  snapshot,
	}
}

// SubscribeChanges registers fn for every change on entity.
func SubscribeChanges(bus Bus, entity string, fn func(ctx context.Context, change Change) error) {
	bus.Subscribe(ChangeEventName(entity), HandlerFunc(func(ctx context.Context, event Event) error {
		change, ok := event.(Change)
		if !ok {
			return nil
		}
		return fn(ctx, change)
	}))
}
