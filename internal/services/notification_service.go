package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
	"github.com/anonto42/sparkmatch/backend/pkg/cache"
	"github.com/anonto42/sparkmatch/backend/pkg/pagination"
)

// MaxNotificationPageSize caps the page size a client may request.
const MaxNotificationPageSize = 100

// Notification type tags written by the application itself.
const (
	NotificationTypeMessage = "message"
	NotificationTypeComment = "comment"
	NotificationTypeReply   = "reply"
	NotificationTypeLike    = "like"
)

// NotificationService owns notification validation, paging and read state.
type NotificationService struct {
	repo   repositories.NotificationRepository
	unread cache.UnreadCounter
	log    *zap.Logger
	now    func() time.Time
}

func NewNotificationService(repo repositories.NotificationRepository, unread cache.UnreadCounter, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, unread: unread, log: log, now: time.Now}
}

func (s *NotificationService) invalidate(ctx context.Context, recipientID uint) {
	if err := s.unread.Invalidate(ctx, recipientID); err != nil {
		s.log.Warn("unread count invalidation failed", zap.Uint("recipient_id", recipientID), zap.Error(err))
	}
}

// Create stores a new unread notification.
func (s *NotificationService) Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error) {
	if req.RecipientID == 0 {
		return nil, apperrors.Validation("recipientId", "must be a positive integer")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.Validation("content", "must not be empty")
	}

	n := &models.Notification{
		RecipientID: req.RecipientID,
		Content:     req.Content,
		URL:         req.URL,
		Type:        req.Type,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	s.invalidate(ctx, n.RecipientID)
	return n, nil
}

// Notify is Create for notifications raised by the application; failures are logged and
// never reach the action that triggered them.
func (s *NotificationService) Notify(ctx context.Context, recipientID uint, content, url, kind string) {
	req := models.CreateNotificationRequest{RecipientID: recipientID, Content: content}
	if url != "" {
		req.URL = &url
	}
	if kind != "" {
		req.Type = &kind
	}
	if _, err := s.Create(ctx, req); err != nil {
		s.log.Error("failed to raise notification",
			zap.Uint("recipient_id", recipientID),
			zap.String("type", kind),
			zap.Error(err))
	}
}

// ListByUser returns one page of the recipient's notifications, newest first.
func (s *NotificationService) ListByUser(ctx context.Context, recipientID uint, page, pageSize int) (*models.NotificationPage, error) {
	if recipientID == 0 {
		return nil, apperrors.Validation("recipientId", "must be a positive integer")
	}
	page, pageSize = pagination.Normalize(page, pageSize)
	pageSize = pagination.Clamp(pageSize, MaxNotificationPageSize)

	items, total, err := s.repo.ListByRecipient(ctx, recipientID, pagination.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	p := pagination.Paginate(total, page, pageSize)
	return &models.NotificationPage{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}, nil
}

func (s *NotificationService) Get(ctx context.Context, id uint) (*models.Notification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) (*models.Notification, error) {
	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	s.invalidate(ctx, n.RecipientID)
	return n, nil
}

// MarkAllRead returns how many notifications changed; zero is not an error.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	if recipientID == 0 {
		return 0, apperrors.Validation("recipientId", "must be a positive integer")
	}
	count, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	s.invalidate(ctx, recipientID)
	return count, nil
}

func (s *NotificationService) Update(ctx context.Context, id uint, patch models.UpdateNotificationRequest) (*models.Notification, error) {
	n, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	if patch.Read != nil {
		s.invalidate(ctx, n.RecipientID)
	}
	return n, nil
}

func (s *NotificationService) Remove(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("remove notification: %w", err)
	}
	s.invalidate(ctx, n.RecipientID)
	return nil
}

// UnreadCount serves the count from cache and fills the cache on a miss.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	count, err := s.unread.Get(ctx, recipientID)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("unread count cache read failed", zap.Uint("recipient_id", recipientID), zap.Error(err))
	}

	// The version is taken before counting so a mutation that lands while the count
	// runs keeps its result out of the cache.
	version, verr := s.unread.Version(ctx, recipientID)
	count, err = s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	if verr != nil {
		s.log.Warn("unread count version read failed", zap.Uint("recipient_id", recipientID), zap.Error(verr))
		return count, nil
	}
	stored, err := s.unread.SetIfVersion(ctx, recipientID, count, version)
	if err != nil {
		s.log.Warn("unread count cache write failed", zap.Uint("recipient_id", recipientID), zap.Error(err))
	} else if !stored {
		s.log.Debug("unread count changed while counting, not cached", zap.Uint("recipient_id", recipientID))
	}
	return count, nil
}

// olderLimit bounds the open-ended "older" bucket of Grouped.
const olderLimit = 50

// Grouped buckets the recipient's notifications into today, yesterday, the rest of the
// last seven days and older.
func (s *NotificationService) Grouped(ctx context.Context, recipientID uint) (*models.GroupedNotifications, error) {
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	var out models.GroupedNotifications
	buckets := []struct {
		dst      *[]models.Notification
		from, to time.Time
		limit    int
	}{
		{&out.Today, todayStart, time.Time{}, 0},
		{&out.Yesterday, yesterdayStart, todayStart, 0},
		{&out.ThisWeek, weekStart, yesterdayStart, 0},
		{&out.Older, time.Time{}, weekStart, olderLimit},
	}
	for _, b := range buckets {
		items, err := s.repo.ListCreatedBetween(ctx, recipientID, b.from, b.to, b.limit)
		if err != nil {
			return nil, fmt.Errorf("group notifications: %w", err)
		}
		*b.dst = items
	}
	return &out, nil
}

// RemoveReadBefore deletes read notifications created before cutoff.
func (s *NotificationService) RemoveReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("remove read notifications: %w", err)
	}
	return n, nil
}
