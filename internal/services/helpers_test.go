package services

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/sparkmatch/backend/internal/repositories"
	"github.com/anonto42/sparkmatch/backend/internal/repositories/repotest"
	"github.com/anonto42/sparkmatch/backend/pkg/cache"
)

func setupTestDB(t *testing.T) *gorm.DB {
	return repotest.NewDB(t)
}

func newNotificationService(t *testing.T, db *gorm.DB) *NotificationService {
	t.Helper()
	return NewNotificationService(
		repositories.NewPostgresNotificationRepository(db),
		cache.NewMemoryUnreadCounter(time.Minute),
		zap.NewNop(),
	)
}
