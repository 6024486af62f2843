package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/models"
)

func TestCommentRepository_CRUD(t *testing.T) {
	repo := NewPostgresCommentRepository(setupTestDB(t))
	ctx := context.Background()

	root := &models.Comment{PostID: "p1", UserID: 1, Content: "hi"}
	require.NoError(t, repo.CreateComment(ctx, root))
	reply := &models.Comment{PostID: "p1", UserID: 2, ParentID: &root.ID, Content: "hello"}
	require.NoError(t, repo.CreateComment(ctx, reply))
	require.NoError(t, repo.CreateComment(ctx, &models.Comment{PostID: "p2", UserID: 1, Content: "elsewhere"}))

	comments, err := repo.GetCommentsByPostID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, root.ID, comments[0].ID)
	require.NotNil(t, comments[1].ParentID)
	assert.Equal(t, root.ID, *comments[1].ParentID)

	reply.Content = "edited"
	require.NoError(t, repo.UpdateComment(ctx, reply))
	got, err := repo.GetCommentByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	require.NoError(t, repo.DeleteComment(ctx, root.ID))
	_, err = repo.GetCommentByID(ctx, root.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(repo.DeleteComment(ctx, root.ID)))

	comments, err = repo.GetCommentsByPostID(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, comments, 1, "the reply survives its deleted parent")
}

func TestUserRepository_Lookup(t *testing.T) {
	repo := NewPostgresUserRepository(setupTestDB(t))
	ctx := context.Background()

	uid := "firebase-abc"
	u := &models.User{Name: "Ana", Email: "ana@example.com", FirebaseUID: &uid}
	require.NoError(t, repo.CreateUser(ctx, u))

	byUID, err := repo.GetUserByFirebaseUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byUID.ID)

	byID, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)

	_, err = repo.GetUserByID(ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = repo.GetUserByFirebaseUID(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
