package post

import (
	"context"
	"errors"

	"github.com/go-monolith/mono"
	"github.com/youngcruel/blog-multiutente/events"
)

// ErrNoEventBus is returned when events are published before the bus is set.
var ErrNoEventBus = errors.New("event bus not set")

// busPublisher publishes post events on the application event bus.
type busPublisher struct {
	bus mono.EventBus
}

var _ EventPublisher = (*busPublisher)(nil)

func (p *busPublisher) PostLiked(_ context.Context, event events.PostLikedEvent) error {
	if p.bus == nil {
		return ErrNoEventBus
	}
	return events.PostLikedV1.Publish(p.bus, event, nil)
}

func (p *busPublisher) PostCommented(_ context.Context, event events.PostCommentedEvent) error {
	if p.bus == nil {
		return ErrNoEventBus
	}
	return events.PostCommentedV1.Publish(p.bus, event, nil)
}
