package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// PostLikedEvent is emitted after a like has been recorded.
type PostLikedEvent struct {
	PostID      string    `json:"post_id"`
	PostOwnerID string    `json:"post_owner_id"`
	ActorID     string    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PostLikedV1 is the typed event definition for likes.
// Subject: events.post.v1.post-liked
var PostLikedV1 = helper.EventDefinition[PostLikedEvent](
	"post", "PostLiked", "v1",
)

// PostCommentedEvent is emitted after a comment has been recorded.
type PostCommentedEvent struct {
	PostID      string    `json:"post_id"`
	PostOwnerID string    `json:"post_owner_id"`
	ActorID     string    `json:"actor_id"`
	CommentID   string    `json:"comment_id"`
	CommentText string    `json:"comment_text"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PostCommentedV1 is the typed event definition for new comments.
// Subject: events.post.v1.post-commented
var PostCommentedV1 = helper.EventDefinition[PostCommentedEvent](
	"post", "PostCommented", "v1",
)
