package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_LikeReachesOwner(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	sink := newRecordingSink()
	r.Join(r.Connect(sink), "A")

	err := p.Publish(context.Background(), "B", "A", LikeEvent("P1"))
	require.NoError(t, err)

	got := sink.next(t)
	assert.Equal(t, FrameNotification, got.Type)
	assert.Equal(t, Notification{Type: EventLike, From: "B", PostID: "P1"}, got.Payload)
	sink.expectNone(t)
}

func TestPublisher_CommentCarriesText(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	sink := newRecordingSink()
	r.Join(r.Connect(sink), "A")

	require.NoError(t, p.Publish(context.Background(), "B", "A", CommentEvent("P1", "nice post")))

	got := sink.next(t)
	assert.Equal(t, Notification{Type: EventComment, From: "B", PostID: "P1", CommentText: "nice post"}, got.Payload)
}

func TestPublisher_SelfActionIsSuppressed(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	sink := newRecordingSink()
	r.Join(r.Connect(sink), "A")

	res, err := p.PublishWithResult(context.Background(), "A", "A", LikeEvent("P1"))
	require.NoError(t, err)

	assert.True(t, res.Suppressed)
	assert.Zero(t, res.Delivered)
	sink.expectNone(t)
}

func TestPublisher_NothingAfterDisconnect(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	sink := newRecordingSink()
	id := r.Connect(sink)
	r.Join(id, "A")

	r.Disconnect(id)
	res, err := p.PublishWithResult(context.Background(), "B", "A", CommentEvent("P1", "hello"))
	require.NoError(t, err)

	assert.Zero(t, res.Delivered)
	sink.expectNone(t)
}

func TestPublisher_EmptyRoomDoesNotBlock(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})

	done := make(chan error, 1)
	go func() {
		done <- p.Publish(context.Background(), "B", "offline-user", LikeEvent("P1"))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish to an empty room blocked")
	}
}

func TestPublisher_EveryMemberReceivesOnce(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	phone, laptop, other := newRecordingSink(), newRecordingSink(), newRecordingSink()
	r.Join(r.Connect(phone), "A")
	r.Join(r.Connect(laptop), "A")
	r.Join(r.Connect(other), "C")

	res, err := p.PublishWithResult(context.Background(), "B", "A", LikeEvent("P1"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Delivered)

	for _, sink := range []*recordingSink{phone, laptop} {
		assert.Equal(t, "B", sink.next(t).Payload.From)
		sink.expectNone(t)
	}
	other.expectNone(t)
}

func TestPublisher_FailingConnectionIsIsolated(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	healthy := newRecordingSink()
	r.Join(r.Connect(failingSink{}), "A")
	r.Join(r.Connect(healthy), "A")

	require.NoError(t, p.Publish(context.Background(), "B", "A", LikeEvent("P1")))
	require.NoError(t, p.Publish(context.Background(), "B", "A", LikeEvent("P2")))

	assert.Equal(t, "P1", healthy.next(t).Payload.PostID)
	assert.Equal(t, "P2", healthy.next(t).Payload.PostID)
}

func TestPublisher_SlowConnectionDropsInsteadOfBlocking(t *testing.T) {
	r := NewRegistry(&nopLogger{}, 1)
	p := NewPublisher(r, &nopLogger{})
	slow := &blockingSink{release: make(chan struct{})}
	r.Join(r.Connect(slow), "A")
	t.Cleanup(func() {
		close(slow.release)
		r.Close()
	})

	const sends = 10
	done := make(chan Result, sends)
	go func() {
		for i := 0; i < sends; i++ {
			res, _ := p.PublishWithResult(context.Background(), "B", "A", LikeEvent("P1"))
			done <- res
		}
	}()

	var delivered, dropped int
	for i := 0; i < sends; i++ {
		select {
		case res := <-done:
			delivered += res.Delivered
			dropped += res.Dropped
		case <-time.After(time.Second):
			t.Fatal("publisher blocked on a slow connection")
		}
	}

	assert.Equal(t, sends, delivered+dropped)
	assert.LessOrEqual(t, delivered, 2, "one frame in flight plus one queued")
}

func TestPublisher_RejectsMalformedCalls(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	sink := newRecordingSink()
	r.Join(r.Connect(sink), "A")

	tests := []struct {
		name  string
		actor string
		owner string
		event Event
	}{
		{name: "missing post id", actor: "B", owner: "A", event: LikeEvent("")},
		{name: "blank post id", actor: "B", owner: "A", event: LikeEvent("   ")},
		{name: "unknown type", actor: "B", owner: "A", event: Event{Type: "share", PostID: "P1"}},
		{name: "empty type", actor: "B", owner: "A", event: Event{PostID: "P1"}},
		{name: "comment without text", actor: "B", owner: "A", event: CommentEvent("P1", "")},
		{name: "like with text", actor: "B", owner: "A", event: Event{Type: EventLike, PostID: "P1", CommentText: "x"}},
		{name: "missing actor", actor: "", owner: "A", event: LikeEvent("P1")},
		{name: "missing owner", actor: "B", owner: "", event: LikeEvent("P1")},
		{name: "self action still validated", actor: "A", owner: "A", event: LikeEvent("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Publish(context.Background(), tt.actor, tt.owner, tt.event)
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("Publish() error = %v, want %v", err, ErrInvalidEvent)
			}
		})
	}

	sink.expectNone(t)
}

func TestPublisher_FIFOPerSource(t *testing.T) {
	r := newTestRegistry(t, 0)
	p := NewPublisher(r, &nopLogger{})
	sink := newRecordingSink()
	r.Join(r.Connect(sink), "A")

	posts := []string{"P1", "P2", "P3", "P4"}
	for _, id := range posts {
		require.NoError(t, p.Publish(context.Background(), "B", "A", LikeEvent(id)))
	}

	for _, want := range posts {
		assert.Equal(t, want, sink.next(t).Payload.PostID)
	}
}
