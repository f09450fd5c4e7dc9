package post

import "errors"

var (
	// ErrPostNotFound is returned when a post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment does not exist on the post.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("only the author can change this resource")
	// ErrAlreadyLiked is returned when a user likes a post twice.
	ErrAlreadyLiked = errors.New("post already liked")
	// ErrNotLiked is returned when removing a like that does not exist.
	ErrNotLiked = errors.New("post not liked")
	// ErrInvalidTitle is returned for titles outside 3-100 characters.
	ErrInvalidTitle = errors.New("title must be between 3 and 100 characters")
	// ErrInvalidContent is returned for content shorter than 10 characters.
	ErrInvalidContent = errors.New("content must be at least 10 characters")
	// ErrInvalidTag is returned for tags that are not alphanumeric.
	ErrInvalidTag = errors.New("tags must be alphanumeric")
	// ErrInvalidComment is returned for comment text outside 1-500 characters.
	ErrInvalidComment = errors.New("comment text must be between 1 and 500 characters")
	// ErrNoChanges is returned when an update carries no field.
	ErrNoChanges = errors.New("no fields to update")
)

// knownErrors lists the sentinels that survive a request-reply round trip.
var knownErrors = []error{
	ErrPostNotFound,
	ErrCommentNotFound,
	ErrForbidden,
	ErrAlreadyLiked,
	ErrNotLiked,
	ErrInvalidTitle,
	ErrInvalidContent,
	ErrInvalidTag,
	ErrInvalidComment,
	ErrNoChanges,
}
