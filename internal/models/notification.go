package models

import "time"

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipientId" gorm:"not null;index"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	URL         *string   `json:"url,omitempty"`
	Type        *string   `json:"type,omitempty" gorm:"size:30;index"` // message, like, comment, reply, match
	IsRead      bool      `json:"read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

// CreateNotificationRequest defines the request body for creating a notification
type CreateNotificationRequest struct {
	RecipientID uint    `json:"recipientId" validate:"required,gt=0"`
	Content     string  `json:"content" validate:"required,max=1000"`
	URL         *string `json:"url,omitempty" validate:"omitempty,max=2048"`
	Type        *string `json:"type,omitempty" validate:"omitempty,max=30"`
}

// UpdateNotificationRequest is a partial update; nil fields are left untouched.
// Recipient and content are immutable and therefore absent.
type UpdateNotificationRequest struct {
	Read *bool   `json:"read,omitempty"`
	URL  *string `json:"url,omitempty" validate:"omitempty,max=2048"`
	Type *string `json:"type,omitempty" validate:"omitempty,max=30"`
}

// IsEmpty reports whether the patch changes nothing.
func (r UpdateNotificationRequest) IsEmpty() bool {
	return r.Read == nil && r.URL == nil && r.Type == nil
}

// NotificationPage is one page of a recipient's notifications.
type NotificationPage struct {
	Items      []Notification `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int64          `json:"totalPages"`
}

// GroupedNotifications buckets a recipient's notifications by age.
type GroupedNotifications struct {
	Today     []Notification `json:"today"`
	Yesterday []Notification `json:"yesterday"`
	ThisWeek  []Notification `json:"thisWeek"`
	Older     []Notification `json:"older"`
}
