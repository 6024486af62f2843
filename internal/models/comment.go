package models

import "gorm.io/gorm"

// Comment represents a comment on a post. A nil ParentID marks a root comment.
type Comment struct {
	gorm.Model
	PostID   string `json:"post_id" gorm:"index"` // MongoDB ObjectID of the post as hex string
	UserID   uint   `json:"user_id" gorm:"index"`
	ParentID *uint  `json:"parent_id" gorm:"index"`
	Content  string `json:"content" gorm:"type:text"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	ParentID *uint  `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	Content  string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
