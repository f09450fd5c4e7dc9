package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/youngcruel/blog-multiutente/events"
)

// Module turns post interaction events into live notifications.
type Module struct {
	registry  *Registry
	publisher *Publisher
	logger    types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the notify module around an existing registry. The same
// registry must be handed to the transport that accepts connections.
func NewModule(registry *Registry, logger types.Logger) *Module {
	return &Module{
		registry:  registry,
		publisher: NewPublisher(registry, logger),
		logger:    logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "notify"
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[notify] Module started - listening for post events")
	return nil
}

// Stop disconnects every live connection.
func (m *Module) Stop(_ context.Context) error {
	connections := m.registry.ConnectionCount()
	m.registry.Close()
	log.Printf("[notify] Module stopped - %d connections were open", connections)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": m.registry.ConnectionCount(),
			"rooms":       m.registry.RoomCount(),
		},
	}
}

// RegisterEventConsumers subscribes to like and comment events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.PostLikedV1, m.handlePostLiked, m,
	); err != nil {
		return fmt.Errorf("failed to register PostLiked consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PostCommentedV1, m.handlePostCommented, m,
	); err != nil {
		return fmt.Errorf("failed to register PostCommented consumer: %w", err)
	}

	log.Println("[notify] Registered event consumers: PostLiked, PostCommented")
	return nil
}

// Malformed events are logged and acknowledged; redelivering them would fail
// the same way.
func (m *Module) handlePostLiked(ctx context.Context, event events.PostLikedEvent, _ *mono.Msg) error {
	err := m.publisher.Publish(ctx, event.ActorID, event.PostOwnerID, LikeEvent(event.PostID))
	if err != nil {
		m.logger.Error("dropping like notification", "post_id", event.PostID, "error", err)
	}
	return nil
}

func (m *Module) handlePostCommented(ctx context.Context, event events.PostCommentedEvent, _ *mono.Msg) error {
	err := m.publisher.Publish(ctx, event.ActorID, event.PostOwnerID, CommentEvent(event.PostID, event.CommentText))
	if err != nil {
		m.logger.Error("dropping comment notification", "post_id", event.PostID, "error", err)
	}
	return nil
}
