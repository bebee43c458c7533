package services

import (
	"context"

	"foodgram/internal/logger"
)

// Routing keys of the domain events.
const (
	EventUserRegistered = "user.registered"
	EventRecipeCreated  = "recipe.created"
	EventRecipeUpdated  = "recipe.updated"
	EventRecipeDeleted  = "recipe.deleted"
	EventFollowCreated  = "follow.created"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// publishEvent sends an event if a publisher is configured. Delivery failures are logged, never returned.
func publishEvent(ctx context.Context, p EventPublisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		logger.Log.Warnw("failed to publish event", "event", routingKey, "error", err)
	}
}
