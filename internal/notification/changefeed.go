package notification

import (
	"context"

	"crm_backend/internal/events"
	"crm_backend/platform/amqp"
)

// RoutingKey is the topic key of a change, e.g. "leads.update".
func RoutingKey(change events.Change) string {
	return change.Entity + "." + string(change.Op)
}

// ChangeFeed republishes store changes on the AMQP topic exchange.
type ChangeFeed struct {
	pub amqp.Publisher
}

func NewChangeFeed(pub amqp.Publisher) *ChangeFeed {
	return &ChangeFeed{pub: pub}
}

func (f *ChangeFeed) Forward(ctx context.Context, change events.Change) error {
	return f.pub.Publish(ctx, RoutingKey(change), change)
}
