package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/pkg/logger"
)

// InboxCleanupJob removes daily batch files older than the retention window
type InboxCleanupJob struct {
	inboxDir  string
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewInboxCleanupJob creates a new inbox cleanup job
func NewInboxCleanupJob(inboxDir string, retention time.Duration, log *logger.Logger) *InboxCleanupJob {
	return &InboxCleanupJob{
		inboxDir:  inboxDir,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *InboxCleanupJob) Name() string {
	return "inbox_cleanup"
}

// Schedule returns the cron schedule (Sundays at 03:00)
func (j *InboxCleanupJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run deletes expired batch files. Files whose name carries no date are left alone.
func (j *InboxCleanupJob) Run(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(j.inboxDir, "daily-scan-*.json"))
	if err != nil {
		return err
	}

	cutoff := j.now().UTC().Add(-j.retention)
	removed := 0
	for _, path := range matches {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		date := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "daily-scan-"), ".json")
		day, err := contracts.ParseDate(date)
		if err != nil || !day.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			j.logger.WithError(err).WithField("path", path).Warn("Failed to remove batch file")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Inbox cleanup completed")
	}
	return nil
}
