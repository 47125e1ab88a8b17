package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/pkg/jsonfile"
	"github.com/wonny/scamdunk/pkg/logger"
)

// InboxPath returns the daily batch file for date inside dir
func InboxPath(dir, date string) string {
	return filepath.Join(dir, fmt.Sprintf("daily-scan-%s.json", date))
}

// SchemeTrackingJob feeds the day's batch file into the scheme tracker
// ⭐ SSOT: the scheduled tracking run starts here only
type SchemeTrackingJob struct {
	service  *schemes.Service
	inboxDir string
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewSchemeTrackingJob creates a new tracking job
func NewSchemeTrackingJob(service *schemes.Service, inboxDir, schedule string, log *logger.Logger) *SchemeTrackingJob {
	return &SchemeTrackingJob{
		service:  service,
		inboxDir: inboxDir,
		schedule: schedule,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *SchemeTrackingJob) Name() string {
	return "scheme_tracking"
}

// Schedule returns the configured cron schedule
func (j *SchemeTrackingJob) Schedule() string {
	return j.schedule
}

// Run tracks today's batch. A missing batch file is not an error.
func (j *SchemeTrackingJob) Run(ctx context.Context) error {
	return j.RunForDate(ctx, contracts.FormatDate(j.now().UTC()))
}

// RunForDate tracks the batch file for date
func (j *SchemeTrackingJob) RunForDate(ctx context.Context, date string) error {
	path := InboxPath(j.inboxDir, date)

	var batch contracts.DailyBatch
	found, err := jsonfile.Read(path, &batch)
	if err != nil {
		return fmt.Errorf("read batch %s: %w", path, err)
	}
	if !found {
		j.logger.WithFields(map[string]interface{}{
			"date": date,
			"path": path,
		}).Info("No daily batch, skipping tracking run")
		return nil
	}
	if batch.Date == "" {
		batch.Date = date
	}

	summary, err := j.service.Track(ctx, &batch)
	if err != nil {
		return fmt.Errorf("track %s: %w", date, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":      summary.RunID,
		"date":        summary.Date,
		"created":     len(summary.Created),
		"updated":     len(summary.Updated),
		"transitions": len(summary.Transitions),
		"active":      summary.Active,
	}).Info("Scheduled tracking run completed")

	return nil
}
