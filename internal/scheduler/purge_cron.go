package scheduler

import (
	"time"

	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// detectionLogRetention is the rolling window the escalation policy
// looks at; anything older is dead weight.
const detectionLogRetention = 24 * time.Hour

// StartPurgeJobs runs the daily detection-log purge, independent of the
// request path.
func StartPurgeJobs(logRepo repositories.DetectionLogRepository) *cron.Cron {
	c := cron.New()

	c.AddFunc("@daily", func() {
		cutoff := time.Now().Add(-detectionLogRetention)
		deleted, err := logRepo.DeleteOlderThan(cutoff)
		if err != nil {
			logrus.WithError(err).Error("detection log purge failed")
			return
		}
		logrus.WithField("deleted", deleted).Info("purged stale detection logs")
	})

	c.Start()
	return c
}
