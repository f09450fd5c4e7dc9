package api

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/youngcruel/blog-multiutente/modules/media"
)

// MediaStore stores uploaded images.
type MediaStore interface {
	Save(ctx context.Context, filename string, data []byte) (*media.Image, error)
	Open(ctx context.Context, key string) ([]byte, *media.Image, error)
	Delete(ctx context.Context, key string) error
	MaxSize() int64
}

// saveUpload stores the file sent in the multipart field, if any, and
// returns its key. An absent file yields an empty key.
func (m *APIModule) saveUpload(c *fiber.Ctx, field string) (string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Not a multipart request.
		return "", nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}

	header := files[0]
	if header.Size > m.media.MaxSize() {
		return "", media.ErrTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, m.media.MaxSize()+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	image, err := m.media.Save(c.UserContext(), header.Filename, data)
	if err != nil {
		return "", err
	}
	return image.Key, nil
}

// discardUpload deletes an image that is no longer referenced. Failures are
// logged only.
func (m *APIModule) discardUpload(c *fiber.Ctx, key string) {
	if key == "" {
		return
	}
	if err := m.media.Delete(c.UserContext(), key); err != nil {
		log.Printf("[api] Warning: failed to delete image %s: %v", key, err)
	}
}

// serveUpload handles GET /uploads/:key.
func (m *APIModule) serveUpload(c *fiber.Ctx) error {
	data, image, err := m.media.Open(c.UserContext(), c.Params("key"))
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, image.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(data)
}
