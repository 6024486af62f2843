package repositories

import (
	"testing"

	"gorm.io/gorm"

	"github.com/anonto42/sparkmatch/backend/internal/repositories/repotest"
)

func setupTestDB(t *testing.T) *gorm.DB {
	return repotest.NewDB(t)
}
