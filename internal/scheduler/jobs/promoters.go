package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/scamdunk/internal/promoters"
	"github.com/wonny/scamdunk/pkg/logger"
)

// PromoterRebuildJob regenerates the promoter database after tracking
type PromoterRebuildJob struct {
	service *promoters.Service
	logger  *logger.Logger
}

// NewPromoterRebuildJob creates a new promoter rebuild job
func NewPromoterRebuildJob(service *promoters.Service, log *logger.Logger) *PromoterRebuildJob {
	return &PromoterRebuildJob{
		service: service,
		logger:  log,
	}
}

// Name returns the job name
func (j *PromoterRebuildJob) Name() string {
	return "promoter_rebuild"
}

// Schedule returns the cron schedule (weekdays at 23:00, after tracking)
func (j *PromoterRebuildJob) Schedule() string {
	return "0 0 23 * * 1-5"
}

// Run rebuilds the promoter database
func (j *PromoterRebuildJob) Run(ctx context.Context) error {
	pdb, err := j.service.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild promoters: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"promoters": pdb.TotalPromoters,
		"active":    pdb.ActivePromoters,
		"serial":    pdb.SerialOffenders,
	}).Info("Promoter database rebuilt")

	return nil
}
