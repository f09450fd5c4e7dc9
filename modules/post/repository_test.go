package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domain "github.com/youngcruel/blog-multiutente/domain/post"
)

func newTestPost(id, author string, createdAt time.Time) *domain.Post {
	return &domain.Post{
		ID:        id,
		Title:     "Title " + id,
		Content:   "Some content long enough",
		AuthorID:  author,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepository_FindOrCreateTags(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	first, err := repo.FindOrCreateTags([]string{"Go", "go", " news ", ""})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "go", first[0].Name)
	assert.Equal(t, "news", first[1].Name)

	second, err := repo.FindOrCreateTags([]string{"news"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[1].ID, second[0].ID, "existing tag should be reused")
}

func TestRepository_ListPosts(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	base := time.Now()

	for i, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, repo.CreatePost(newTestPost(id, "alice", base.Add(time.Duration(i)*time.Minute))))
	}

	posts, total, err := repo.ListPosts(0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, posts, 2)
	assert.Equal(t, "p3", posts[0].ID)
	assert.Equal(t, "p2", posts[1].ID)

	posts, _, err = repo.ListPosts(2, 2)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
}

func TestRepository_LikesAndStats(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	require.NoError(t, repo.CreatePost(newTestPost("p1", "alice", time.Now())))

	require.NoError(t, repo.AddLike(&domain.Like{PostID: "p1", UserID: "bob"}))
	assert.ErrorIs(t, repo.AddLike(&domain.Like{PostID: "p1", UserID: "bob"}), ErrAlreadyLiked)
	require.NoError(t, repo.AddComment(&domain.Comment{ID: "c1", PostID: "p1", AuthorID: "bob", Text: "hi"}))

	stats, err := repo.Stats([]string{"p1", "missing"})
	require.NoError(t, err)
	assert.Equal(t, PostStats{PostID: "p1", LikeCount: 1, CommentCount: 1}, stats["p1"])
	assert.Equal(t, PostStats{PostID: "missing"}, stats["missing"])

	require.NoError(t, repo.RemoveLike("p1", "bob"))
	assert.ErrorIs(t, repo.RemoveLike("p1", "bob"), ErrNotLiked)
}

func TestRepository_DeletePost(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	tags, err := repo.FindOrCreateTags([]string{"go"})
	require.NoError(t, err)
	post := newTestPost("p1", "alice", time.Now())
	post.Tags = tags
	require.NoError(t, repo.CreatePost(post))
	require.NoError(t, repo.AddLike(&domain.Like{PostID: "p1", UserID: "bob"}))
	require.NoError(t, repo.AddComment(&domain.Comment{ID: "c1", PostID: "p1", AuthorID: "bob", Text: "hi"}))

	require.NoError(t, repo.DeletePost("p1"))

	_, err = repo.FindPost("p1")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = repo.FindComment("p1", "c1")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.ErrorIs(t, repo.DeletePost("p1"), ErrPostNotFound)
}

func TestRepository_UpdatePostReplacesTags(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	tags, err := repo.FindOrCreateTags([]string{"go", "web"})
	require.NoError(t, err)
	post := newTestPost("p1", "alice", time.Now())
	post.Tags = tags
	require.NoError(t, repo.CreatePost(post))

	replacement, err := repo.FindOrCreateTags([]string{"rust"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePost(&domain.Post{ID: "p1"}, map[string]any{"title": "Renamed"}, replacement))

	found, err := repo.FindPost("p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "rust", found.Tags[0].Name)
}
