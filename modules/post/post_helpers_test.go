package post

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/youngcruel/blog-multiutente/domain/user"
	"github.com/youngcruel/blog-multiutente/events"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, NewRepository(db).Migrate())
	return db
}

// fakeDirectory resolves users from a fixed map.
type fakeDirectory struct {
	users map[string]*user.User
	err   error
}

func (d *fakeDirectory) GetUsers(_ context.Context, ids []string) ([]*user.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	var found []*user.User
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			found = append(found, u)
		}
	}
	return found, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu        sync.Mutex
	liked     []events.PostLikedEvent
	commented []events.PostCommentedEvent
	err       error
}

func (p *recordingPublisher) PostLiked(_ context.Context, e events.PostLikedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.liked = append(p.liked, e)
	return p.err
}

func (p *recordingPublisher) PostCommented(_ context.Context, e events.PostCommentedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commented = append(p.commented, e)
	return p.err
}

var errDirectoryDown = errors.New("directory unavailable")

func setupTestService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()

	directory := &fakeDirectory{users: map[string]*user.User{
		"alice": {ID: "alice", Username: "alice"},
		"bob":   {ID: "bob", Username: "bob", ProfileImage: "bob.png"},
	}}
	publisher := &recordingPublisher{}
	svc := NewService(NewRepository(setupTestDB(t)), directory, publisher)

	// Strictly increasing clock so feed ordering is deterministic.
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, publisher
}

func eventsFixtureLiked() events.PostLikedEvent {
	return events.PostLikedEvent{PostID: "p1", PostOwnerID: "alice", ActorID: "bob"}
}
