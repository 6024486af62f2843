// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// NotificationPruner deletes read notifications older than a cutoff.
type NotificationPruner interface {
	RemoveReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Jobs struct {
	scheduler *gocron.Scheduler
	pruner    NotificationPruner
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func New(pruner NotificationPruner, retention time.Duration, log *zap.Logger) *Jobs {
	return &Jobs{
		scheduler: gocron.NewScheduler(time.Local),
		pruner:    pruner,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// Start schedules the daily cleanup and returns immediately.
func (j *Jobs) Start() error {
	if _, err := j.scheduler.Every(1).Day().Do(j.mainCleanup); err != nil {
		return err
	}
	j.scheduler.StartAsync()
	j.log.Info("Cron jobs started.", zap.Duration("notification_retention", j.retention))
	return nil
}

func (j *Jobs) Stop() {
	j.scheduler.Stop()
}

func (j *Jobs) mainCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	j.cleanupNotifications(ctx)
}

func (j *Jobs) cleanupNotifications(ctx context.Context) {
	cutoff := j.now().Add(-j.retention)
	deleted, err := j.pruner.RemoveReadBefore(ctx, cutoff)
	if err != nil {
		j.log.Error("Failed to remove old notifications", zap.Error(err))
		return
	}
	j.log.Info("Removed old notifications", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
}
