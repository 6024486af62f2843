package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, int64, error)
	ListCreatedBetween(ctx context.Context, recipientID uint, from, to time.Time, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	Update(ctx context.Context, id uint, patch models.UpdateNotificationRequest) (*models.Notification, error)
	Delete(ctx context.Context, id uint) (*models.Notification, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func notFoundOr(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("notification", id)
	}
	return err
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFoundOr(err, id)
	}
	return &n, nil
}

func (r *postgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, int64, error) {
	notifications := []models.Notification{}
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

// ListCreatedBetween returns notifications created in [from, to), newest first.
// A zero from or to leaves that side open; limit <= 0 means no limit.
func (r *postgresNotificationRepository) ListCreatedBetween(ctx context.Context, recipientID uint, from, to time.Time, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_at DESC").Order("id DESC").Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&n, id).Error; err != nil {
			return err
		}
		if n.IsRead {
			return nil
		}
		if err := tx.Model(&n).Update("is_read", true).Error; err != nil {
			return err
		}
		n.IsRead = true
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return &n, nil
}

// MarkAllRead flips every unread notification of the recipient in one statement.
func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) Update(ctx context.Context, id uint, patch models.UpdateNotificationRequest) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&n, id).Error; err != nil {
			return err
		}
		changes := map[string]any{}
		if patch.Read != nil {
			changes["is_read"] = *patch.Read
		}
		if patch.URL != nil {
			changes["url"] = *patch.URL
		}
		if patch.Type != nil {
			changes["type"] = *patch.Type
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&n).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&n, id).Error
	})
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return &n, nil
}

// Delete removes the notification and returns it as it was before removal.
func (r *postgresNotificationRepository) Delete(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&n, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Notification{}, id).Error
	})
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return &n, nil
}

func (r *postgresNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
