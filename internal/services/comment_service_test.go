package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
	"github.com/anonto42/sparkmatch/backend/internal/repositories/repotest"
)

type commentFixture struct {
	svc           *CommentService
	notifications *NotificationService
	posts         *repotest.PostRepo
	postID        string
}

func newCommentFixture(t *testing.T) commentFixture {
	t.Helper()
	db := setupTestDB(t)
	notifications := newNotificationService(t, db)
	posts := repotest.NewPostRepo()
	post := &models.Post{UserID: 1, Content: "first date ideas?"}
	require.NoError(t, posts.CreatePost(context.Background(), post))

	svc := NewCommentService(repositories.NewPostgresCommentRepository(db), posts, notifications, zap.NewNop())
	return commentFixture{svc: svc, notifications: notifications, posts: posts, postID: post.ID.Hex()}
}

func TestCommentService_TreeAndNotifications(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.postID, 2, models.CreateCommentRequest{Content: "coffee"})
	require.NoError(t, err)
	reply, err := f.svc.Create(ctx, f.postID, 3, models.CreateCommentRequest{ParentID: &root.ID, Content: "+1"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.postID, 2, models.CreateCommentRequest{ParentID: &reply.ID, Content: "thanks"})
	require.NoError(t, err)

	forest, err := f.svc.Tree(ctx, f.postID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Replies, 1)
	require.Len(t, forest[0].Replies[0].Replies, 1)
	assert.Equal(t, "thanks", forest[0].Replies[0].Replies[0].Content)

	post, err := f.posts.GetPostByID(ctx, f.postID)
	require.NoError(t, err)
	assert.Equal(t, 3, post.CommentsCount)

	// post author hears about the root comment, comment authors about replies
	postAuthor, err := f.notifications.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), postAuthor)
	rootAuthor, err := f.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rootAuthor)
	replyAuthor, err := f.notifications.UnreadCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), replyAuthor)
}

func TestCommentService_ParentMustBeOnSamePost(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	other := &models.Post{UserID: 1, Content: "other"}
	require.NoError(t, f.posts.CreatePost(ctx, other))
	foreign, err := f.svc.Create(ctx, other.ID.Hex(), 2, models.CreateCommentRequest{Content: "elsewhere"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.postID, 2, models.CreateCommentRequest{ParentID: &foreign.ID, Content: "x"})
	assert.True(t, apperrors.IsValidation(err))

	missing := uint(4040)
	_, err = f.svc.Create(ctx, f.postID, 2, models.CreateCommentRequest{ParentID: &missing, Content: "x"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.Create(ctx, "000000000000000000000000", 2, models.CreateCommentRequest{Content: "x"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCommentService_AuthorOnly(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.postID, 2, models.CreateCommentRequest{Content: "mine"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, c.ID, 3, models.UpdateCommentRequest{Content: "hijack"})
	assert.True(t, apperrors.IsForbidden(err))
	assert.True(t, apperrors.IsForbidden(f.svc.Delete(ctx, c.ID, 3)))

	updated, err := f.svc.Update(ctx, c.ID, 2, models.UpdateCommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, f.svc.Delete(ctx, c.ID, 2))
	assert.True(t, apperrors.IsNotFound(f.svc.Delete(ctx, c.ID, 2)))
}

func TestCommentService_DeletedParentOrphansReplies(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.postID, 2, models.CreateCommentRequest{Content: "root"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.postID, 3, models.CreateCommentRequest{ParentID: &root.ID, Content: "reply"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.postID, 3, models.CreateCommentRequest{Content: "other root"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, root.ID, 2))

	forest, err := f.svc.Tree(ctx, f.postID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, "other root", forest[0].Content)
}
