package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// createTestModule starts an application with an in-memory images bucket.
func createTestModule(t *testing.T, maxSize int64) *Module {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
	)
	require.NoError(t, err)

	plugin, err := fsjetstream.New(fsjetstream.Config{
		Buckets: []fsjetstream.BucketConfig{
			{
				Name:        BucketName,
				Description: "Test images",
				MaxBytes:    10 * 1024 * 1024,
				Storage:     fsjetstream.MemoryStorage,
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, app.RegisterPlugin(plugin, "storage"))
	if err := app.Start(context.Background()); err != nil {
		t.Skipf("Embedded NATS not available, skipping integration test: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	module := NewModule(maxSize, &mockLogger{})
	module.SetPlugin("storage", plugin)
	require.NoError(t, module.Start(context.Background()))
	return module
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestModule_SaveOpenDelete(t *testing.T) {
	module := createTestModule(t, 0)
	ctx := context.Background()
	data := pngBytes(t)

	saved, err := module.Save(ctx, "avatar.PNG", data)
	require.NoError(t, err)
	assert.True(t, keyPattern.MatchString(saved.Key), "unexpected key %q", saved.Key)
	assert.True(t, strings.HasSuffix(saved.Key, ".png"))
	assert.Equal(t, "image/png", saved.ContentType)
	assert.Equal(t, int64(len(data)), saved.Size)

	got, info, err := module.Open(ctx, saved.Key)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", info.ContentType)

	require.NoError(t, module.Delete(ctx, saved.Key))
	_, _, err = module.Open(ctx, saved.Key)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestModule_SaveRejects(t *testing.T) {
	module := createTestModule(t, 64)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{"empty", "a.png", nil, ErrEmptyFile},
		{"too large", "a.png", bytes.Repeat([]byte{0}, 65), ErrTooLarge},
		{"extension", "a.txt", []byte("hello"), ErrUnsupportedType},
		{"content mismatch", "a.png", []byte("GIF89a not really a png"), ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := module.Save(ctx, tt.filename, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestModule_OpenInvalidKey(t *testing.T) {
	module := createTestModule(t, 0)

	for _, key := range []string{"", "../etc/passwd", "123-short.png", "123-abcdefghijklmnopqrstu.exe"} {
		_, _, err := module.Open(context.Background(), key)
		if err != ErrInvalidKey {
			t.Errorf("Open(%q) error = %v, want %v", key, err, ErrInvalidKey)
		}
	}
}

func TestModule_NotStarted(t *testing.T) {
	module := NewModule(0, &mockLogger{})

	_, err := module.Save(context.Background(), "a.png", []byte("x"))
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, DefaultMaxUploadSize, module.MaxSize())
	assert.False(t, module.Health(context.Background()).Healthy)
	assert.Error(t, module.Start(context.Background()))
}
