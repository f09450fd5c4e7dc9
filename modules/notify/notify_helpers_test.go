package notify

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/require"
)

// nopLogger implements types.Logger for testing.
type nopLogger struct{}

func (l *nopLogger) Debug(msg string, args ...any)         {}
func (l *nopLogger) Info(msg string, args ...any)          {}
func (l *nopLogger) Warn(msg string, args ...any)          {}
func (l *nopLogger) Error(msg string, args ...any)         {}
func (l *nopLogger) With(args ...any) types.Logger         { return l }
func (l *nopLogger) WithError(err error) types.Logger      { return l }
func (l *nopLogger) WithModule(module string) types.Logger { return l }

// recordingSink captures every frame written to it.
type recordingSink struct {
	frames chan []byte
}

func newRecordingSink() *recordingSink {
	return &recordingSink{frames: make(chan []byte, 64)}
}

func (s *recordingSink) Send(frame []byte) error {
	s.frames <- frame
	return nil
}

type receivedFrame struct {
	Type    string       `json:"type"`
	Payload Notification `json:"payload"`
}

// next waits for the next frame or fails the test.
func (s *recordingSink) next(t *testing.T) receivedFrame {
	t.Helper()
	select {
	case raw := <-s.frames:
		var f receivedFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return receivedFrame{}
	}
}

// expectNone asserts no frame arrives within a short grace period.
func (s *recordingSink) expectNone(t *testing.T) {
	t.Helper()
	select {
	case raw := <-s.frames:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

// failingSink rejects every write.
type failingSink struct{}

func (failingSink) Send([]byte) error {
	return errors.New("connection reset by peer")
}

// blockingSink never completes a write until released.
type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Send([]byte) error {
	<-s.release
	return nil
}

func newTestRegistry(t *testing.T, sendBuffer int) *Registry {
	t.Helper()
	r := NewRegistry(&nopLogger{}, sendBuffer)
	t.Cleanup(r.Close)
	return r
}
