// Package media stores post and profile images in a JetStream object store
// bucket provided by the fs-jetstream plugin.
package media

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

// BucketName is the object store bucket holding uploaded images.
const BucketName = "images"

// Module implements image storage on top of the storage plugin.
type Module struct {
	storage *fsjetstream.PluginModule
	bucket  fsjetstream.FileStoragePort
	service *Service
	maxSize int64
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.UsePluginModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new media module.
func NewModule(maxSize int64, logger types.Logger) *Module {
	return &Module{
		maxSize: maxSize,
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "media"
}

// SetPlugin receives the storage plugin from the framework.
func (m *Module) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias == "storage" {
		storage, ok := plugin.(*fsjetstream.PluginModule)
		if !ok {
			m.logger.Error("Invalid plugin type for storage",
				"alias", alias,
				"expected", "*fsjetstream.PluginModule")
			return
		}
		m.storage = storage
		m.logger.Info("Received storage plugin", "alias", alias)
	}
}

// Start resolves the images bucket and builds the service.
func (m *Module) Start(_ context.Context) error {
	if m.storage == nil {
		return fmt.Errorf("required plugin 'storage' not registered")
	}

	m.bucket = m.storage.Bucket(BucketName)
	if m.bucket == nil {
		return fmt.Errorf("bucket '%s' not found in storage plugin", BucketName)
	}

	service, err := NewService(m.bucket, m.maxSize)
	if err != nil {
		return err
	}
	m.service = service

	m.logger.Info("Media module started", "bucket", BucketName, "max_upload_size", service.MaxSize())
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Media module stopped")
	return nil
}

// Health reports whether the bucket is available.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "bucket not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"bucket": BucketName,
		},
	}
}

// MaxSize returns the upload limit in bytes.
func (m *Module) MaxSize() int64 {
	if m.service == nil {
		if m.maxSize > 0 {
			return m.maxSize
		}
		return DefaultMaxUploadSize
	}
	return m.service.MaxSize()
}

// Save stores an uploaded image.
func (m *Module) Save(ctx context.Context, filename string, data []byte) (*Image, error) {
	if m.service == nil {
		return nil, ErrNotStarted
	}
	return m.service.Save(ctx, filename, data)
}

// Open returns a stored image.
func (m *Module) Open(ctx context.Context, key string) ([]byte, *Image, error) {
	if m.service == nil {
		return nil, nil, ErrNotStarted
	}
	return m.service.Open(ctx, key)
}

// Delete removes a stored image.
func (m *Module) Delete(ctx context.Context, key string) error {
	if m.service == nil {
		return ErrNotStarted
	}
	return m.service.Delete(ctx, key)
}
