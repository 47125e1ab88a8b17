package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/scamdunk/internal/external/alerts"
	"github.com/wonny/scamdunk/pkg/logger"
)

// AlertRefreshJob refreshes the regulatory alert list
type AlertRefreshJob struct {
	service *alerts.Service
	logger  *logger.Logger
}

// NewAlertRefreshJob creates a new alert refresh job
func NewAlertRefreshJob(service *alerts.Service, log *logger.Logger) *AlertRefreshJob {
	return &AlertRefreshJob{
		service: service,
		logger:  log,
	}
}

// Name returns the job name
func (j *AlertRefreshJob) Name() string {
	return "alert_refresh"
}

// Schedule returns the cron schedule (every 6 hours)
func (j *AlertRefreshJob) Schedule() string {
	return "0 0 */6 * * *"
}

// Run fetches the suspension list and replaces the in-memory set
func (j *AlertRefreshJob) Run(ctx context.Context) error {
	n, err := j.service.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh alert list: %w", err)
	}

	j.logger.WithField("tickers", n).Info("Alert list refreshed")
	return nil
}
