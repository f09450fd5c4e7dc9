package media

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	gonanoid "github.com/jaevor/go-nanoid"
)

// DefaultMaxUploadSize is the upload limit used when none is configured.
const DefaultMaxUploadSize int64 = 5 << 20

// allowedTypes maps accepted extensions to the content type the file must
// sniff as.
var allowedTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// keyPattern matches keys produced by Save: <unix millis>-<nanoid>.<ext>
var keyPattern = regexp.MustCompile(`^[0-9]+-[A-Za-z0-9_-]{21}\.(jpeg|jpg|png|webp|gif)$`)

// Image describes a stored image.
type Image struct {
	Key         string    `json:"key"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service stores uploaded images in an object store bucket.
type Service struct {
	bucket  fsjetstream.FileStoragePort
	maxSize int64
	newID   func() string
	now     func() time.Time
}

// NewService creates a new image service. maxSize <= 0 selects
// DefaultMaxUploadSize.
func NewService(bucket fsjetstream.FileStoragePort, maxSize int64) (*Service, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	newID, err := gonanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	return &Service{
		bucket:  bucket,
		maxSize: maxSize,
		newID:   newID,
		now:     time.Now,
	}, nil
}

// MaxSize returns the upload limit in bytes.
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Save validates and stores an image. The returned key is the only handle
// to the stored object.
func (s *Service) Save(ctx context.Context, filename string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedTypes[ext]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if sniffed := http.DetectContentType(data); sniffed != contentType {
		return nil, fmt.Errorf("%w: content is %s", ErrUnsupportedType, sniffed)
	}

	now := s.now()
	key := fmt.Sprintf("%d-%s%s", now.UnixMilli(), s.newID(), ext)

	info, err := s.bucket.Put(ctx, key, data,
		fsjetstream.WithDescription("Image upload"),
		fsjetstream.WithHeaders(map[string]string{
			"Content-Type":  contentType,
			"Original-Name": filepath.Base(filename),
			"Uploaded-At":   now.Format(time.RFC3339),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	return &Image{
		Key:         key,
		ContentType: contentType,
		Size:        int64(info.Size),
		CreatedAt:   now,
	}, nil
}

// Open returns the bytes and metadata of a stored image.
func (s *Service) Open(_ context.Context, key string) ([]byte, *Image, error) {
	obj, err := s.find(key)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.bucket.Get(obj.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get image: %w", err)
	}
	return data, buildImage(obj), nil
}

// Delete removes a stored image.
func (s *Service) Delete(_ context.Context, key string) error {
	obj, err := s.find(key)
	if err != nil {
		return err
	}
	if err := s.bucket.Delete(obj.Name); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *Service) find(key string) (*fsjetstream.ObjectInfo, error) {
	if !keyPattern.MatchString(key) {
		return nil, ErrInvalidKey
	}

	objects, err := s.bucket.List(fsjetstream.WithPrefix(key))
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	for i := range objects {
		if objects[i].Name == key {
			return &objects[i], nil
		}
	}
	return nil, ErrImageNotFound
}

func buildImage(obj *fsjetstream.ObjectInfo) *Image {
	img := &Image{
		Key:         obj.Name,
		ContentType: obj.Headers["Content-Type"],
		Size:        int64(obj.Size),
		CreatedAt:   obj.ModTime,
	}
	if img.ContentType == "" {
		img.ContentType = allowedTypes[strings.ToLower(filepath.Ext(obj.Name))]
	}
	if millis, _, ok := strings.Cut(obj.Name, "-"); ok && img.CreatedAt.IsZero() {
		if ms, err := strconv.ParseInt(millis, 10, 64); err == nil {
			img.CreatedAt = time.UnixMilli(ms)
		}
	}
	return img
}
