package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/youngcruel/blog-multiutente/modules/auth"
	"github.com/youngcruel/blog-multiutente/modules/media"
	"github.com/youngcruel/blog-multiutente/modules/post"
)

// errorStatus maps domain errors to HTTP status codes and error codes.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized, "unauthorized"},
	{auth.ErrInvalidToken, fiber.StatusUnauthorized, "unauthorized"},
	{auth.ErrExpiredToken, fiber.StatusUnauthorized, "unauthorized"},
	{auth.ErrUserExists, fiber.StatusConflict, "conflict"},
	{auth.ErrUserNotFound, fiber.StatusNotFound, "not_found"},
	{auth.ErrInvalidEmail, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrWeakPassword, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrPasswordTooLong, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrInvalidUsername, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrInvalidResetToken, fiber.StatusBadRequest, "bad_request"},

	{post.ErrPostNotFound, fiber.StatusNotFound, "not_found"},
	{post.ErrCommentNotFound, fiber.StatusNotFound, "not_found"},
	{post.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{post.ErrAlreadyLiked, fiber.StatusBadRequest, "bad_request"},
	{post.ErrNotLiked, fiber.StatusBadRequest, "bad_request"},
	{post.ErrInvalidTitle, fiber.StatusBadRequest, "bad_request"},
	{post.ErrInvalidContent, fiber.StatusBadRequest, "bad_request"},
	{post.ErrInvalidTag, fiber.StatusBadRequest, "bad_request"},
	{post.ErrInvalidComment, fiber.StatusBadRequest, "bad_request"},
	{post.ErrNoChanges, fiber.StatusBadRequest, "bad_request"},

	{media.ErrImageNotFound, fiber.StatusNotFound, "not_found"},
	{media.ErrInvalidKey, fiber.StatusNotFound, "not_found"},
	{media.ErrUnsupportedType, fiber.StatusBadRequest, "bad_request"},
	{media.ErrEmptyFile, fiber.StatusBadRequest, "bad_request"},
	{media.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "payload_too_large"},
	{media.ErrNotStarted, fiber.StatusServiceUnavailable, "unavailable"},
}

// writeError sends the response for err. Unknown errors are logged and
// reported as a generic 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(ErrorResponse{
				Error:   e.code,
				Message: e.err.Error(),
			})
		}
	}

	log.Printf("[api] Internal error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
