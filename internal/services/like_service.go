package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
)

// LikeService records post likes and tells the post author about them.
type LikeService struct {
	likes         repositories.LikeRepository
	posts         repositories.PostRepository
	notifications *NotificationService
	log           *zap.Logger
}

func NewLikeService(likes repositories.LikeRepository, posts repositories.PostRepository, notifications *NotificationService, log *zap.Logger) *LikeService {
	return &LikeService{likes: likes, posts: posts, notifications: notifications, log: log}
}

// Like adds the user's like to a post; liking twice is a ConflictError.
func (s *LikeService) Like(ctx context.Context, postID string, userID uint) (*models.LikeStatus, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.HasUserLikedPost(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("check like: %w", err)
	}
	if liked {
		return nil, apperrors.Conflict("post already liked")
	}
	if err := s.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: userID}); err != nil {
		return nil, fmt.Errorf("create like: %w", err)
	}

	if post.UserID != userID {
		s.notifications.Notify(ctx, post.UserID, "Someone liked your post", "/posts/"+postID, NotificationTypeLike)
	}
	return s.Status(ctx, postID, userID)
}

func (s *LikeService) Unlike(ctx context.Context, postID string, userID uint) error {
	return s.likes.DeleteLike(ctx, postID, userID)
}

func (s *LikeService) Status(ctx context.Context, postID string, userID uint) (*models.LikeStatus, error) {
	count, err := s.likes.CountByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	liked, err := s.likes.HasUserLikedPost(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("check like: %w", err)
	}
	return &models.LikeStatus{PostID: postID, Count: count, Liked: liked}, nil
}
