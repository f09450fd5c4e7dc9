package notify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEvent is returned by Publish for malformed calls.
var ErrInvalidEvent = errors.New("invalid notification event")

// EventType enumerates the interactions that produce a notification.
type EventType string

const (
	EventLike    EventType = "like"
	EventComment EventType = "comment"
)

// Event is the tagged variant handed to Publish. Build it with LikeEvent or
// CommentEvent rather than by hand.
type Event struct {
	Type        EventType
	PostID      string
	CommentText string
}

// LikeEvent builds the event published after a like is recorded.
func LikeEvent(postID string) Event {
	return Event{Type: EventLike, PostID: postID}
}

// CommentEvent builds the event published after a comment is recorded.
func CommentEvent(postID, text string) Event {
	return Event{Type: EventComment, PostID: postID, CommentText: text}
}

// Validate reports whether the event is well formed.
func (e Event) Validate() error {
	if strings.TrimSpace(e.PostID) == "" {
		return fmt.Errorf("%w: post id is required", ErrInvalidEvent)
	}

	switch e.Type {
	case EventLike:
		if e.CommentText != "" {
			return fmt.Errorf("%w: like events carry no comment text", ErrInvalidEvent)
		}
	case EventComment:
		if strings.TrimSpace(e.CommentText) == "" {
			return fmt.Errorf("%w: comment text is required", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}

	return nil
}

// Notification is the payload of a "notification" frame.
type Notification struct {
	Type        EventType `json:"type"`
	From        string    `json:"from"`
	PostID      string    `json:"postId"`
	CommentText string    `json:"commentText,omitempty"`
}

func (e Event) notification(from string) Notification {
	return Notification{
		Type:        e.Type,
		From:        from,
		PostID:      e.PostID,
		CommentText: e.CommentText,
	}
}

// Frame types exchanged over the notification socket.
const (
	FrameJoin         = "join"
	FrameLeave        = "leave"
	FrameJoined       = "joined"
	FrameLeft         = "left"
	FrameNotification = "notification"
	FrameError        = "error"
)

// Frame is a server to client message.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}
