package store

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eventboard/eventboard/internal/logging"
)

// ScheduleBackups runs b.Backup on the given cron schedule until the
// returned scheduler is stopped.
func ScheduleBackups(schedule string, b Backuper) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		dst, err := b.Backup(ctx, time.Now())
		if err != nil {
			logging.Error("scheduled backup failed", err)
			return
		}
		if dst == "" {
			logging.Info("scheduled backup skipped; no data yet")
			return
		}
		logging.Info("backup created", "destination", dst)
	})
	if err != nil {
		return nil, fmt.Errorf("parse backup schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
