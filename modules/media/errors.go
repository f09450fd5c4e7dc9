package media

import "errors"

// Sentinel errors for image storage.
var (
	// ErrImageNotFound is returned when no image is stored under the key.
	ErrImageNotFound = errors.New("image not found")

	// ErrInvalidKey is returned for keys that were not issued by Save.
	ErrInvalidKey = errors.New("invalid image key")

	// ErrUnsupportedType is returned for files that are not jpeg, png, webp or gif images.
	ErrUnsupportedType = errors.New("only jpeg, jpg, png, webp and gif images are allowed")

	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("image exceeds the maximum upload size")

	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("image is empty")

	// ErrNotStarted is returned when the module is used before Start.
	ErrNotStarted = errors.New("media module not started")
)
