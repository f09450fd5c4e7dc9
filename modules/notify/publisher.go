package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono/pkg/types"
)

// Result describes what a publish did.
type Result struct {
	Suppressed bool
	Delivered  int
	Dropped    int
}

// Publisher routes interaction events to the room of the resource owner.
type Publisher struct {
	registry *Registry
	logger   types.Logger
}

// NewPublisher creates a Publisher delivering through registry.
func NewPublisher(registry *Registry, logger types.Logger) *Publisher {
	return &Publisher{
		registry: registry,
		logger:   logger,
	}
}

// Publish notifies every live connection of ownerID that actingUserID
// performed ev. Delivery is best effort and never blocks; only malformed calls
// return an error.
func (p *Publisher) Publish(ctx context.Context, actingUserID, ownerID string, ev Event) error {
	_, err := p.PublishWithResult(ctx, actingUserID, ownerID, ev)
	return err
}

// PublishWithResult is Publish reporting the fan-out outcome.
func (p *Publisher) PublishWithResult(_ context.Context, actingUserID, ownerID string, ev Event) (Result, error) {
	if err := ev.Validate(); err != nil {
		return Result{}, err
	}
	if actingUserID == "" {
		return Result{}, fmt.Errorf("%w: acting user id is required", ErrInvalidEvent)
	}
	if ownerID == "" {
		return Result{}, fmt.Errorf("%w: owner id is required", ErrInvalidEvent)
	}

	// Users are never notified about their own actions.
	if actingUserID == ownerID {
		return Result{Suppressed: true}, nil
	}

	frame, err := json.Marshal(Frame{
		Type:    FrameNotification,
		Payload: ev.notification(actingUserID),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode notification: %w", err)
	}

	delivered, dropped := p.registry.broadcast(ownerID, frame)
	p.logger.Debug("notification published",
		"type", string(ev.Type),
		"from", actingUserID,
		"to", ownerID,
		"post_id", ev.PostID,
		"delivered", delivered,
		"dropped", dropped,
	)

	return Result{Delivered: delivered, Dropped: dropped}, nil
}
