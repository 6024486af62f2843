package models

import "gorm.io/gorm"

// Like represents a like on a post
type Like struct {
	gorm.Model
	PostID string `json:"post_id" gorm:"uniqueIndex:idx_like_post_user"` // MongoDB ObjectID of the post as hex string
	UserID uint   `json:"user_id" gorm:"uniqueIndex:idx_like_post_user"`
}

// LikeStatus summarises a post's likes from the caller's point of view
type LikeStatus struct {
	PostID string `json:"post_id"`
	Count  int64  `json:"count"`
	Liked  bool   `json:"liked"`
}
