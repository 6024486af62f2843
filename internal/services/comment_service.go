package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/commenttree"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
)

// CommentService manages comments and serves them as reply trees.
type CommentService struct {
	comments      repositories.CommentRepository
	posts         repositories.PostRepository
	notifications *NotificationService
	log           *zap.Logger
}

func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, notifications *NotificationService, log *zap.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, notifications: notifications, log: log}
}

// Create adds a comment to a post. A parent, when given, must be a comment on the same post.
func (s *CommentService) Create(ctx context.Context, postID string, authorID uint, req models.CreateCommentRequest) (*models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = s.comments.GetCommentByID(ctx, *req.ParentID)
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Validation("parent_id", "parent comment does not exist")
		}
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, apperrors.Validation("parent_id", "parent comment belongs to another post")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   authorID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := s.posts.AdjustCommentsCount(ctx, postID, 1); err != nil {
		s.log.Warn("failed to increment comments count", zap.String("post_id", postID), zap.Error(err))
	}

	link := "/posts/" + postID
	switch {
	case parent != nil && parent.UserID != authorID:
		s.notifications.Notify(ctx, parent.UserID, "Someone replied to your comment", link, NotificationTypeReply)
	case parent == nil && post.UserID != authorID:
		s.notifications.Notify(ctx, post.UserID, "Someone commented on your post", link, NotificationTypeComment)
	}

	return comment, nil
}

// Tree returns the post's comments as a reply forest, oldest first at every level.
func (s *CommentService) Tree(ctx context.Context, postID string) ([]*commenttree.Node, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return commenttree.Build(comments), nil
}

func (s *CommentService) ownedComment(ctx context.Context, id, authorID uint) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != authorID {
		return nil, apperrors.Forbidden("you are not the author of this comment")
	}
	return comment, nil
}

// Update changes the content of a comment; only its author may do so.
func (s *CommentService) Update(ctx context.Context, id, authorID uint, req models.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.ownedComment(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	comment.Content = req.Content
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment; only its author may do so. Replies stay stored and drop out
// of the tree as orphans.
func (s *CommentService) Delete(ctx context.Context, id, authorID uint) error {
	comment, err := s.ownedComment(ctx, id, authorID)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return err
	}
	if err := s.posts.AdjustCommentsCount(ctx, comment.PostID, -1); err != nil {
		s.log.Warn("failed to decrement comments count", zap.String("post_id", comment.PostID), zap.Error(err))
	}
	return nil
}
