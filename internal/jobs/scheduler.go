package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"rental-backend/internal/config"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
)

// Scheduler runs the recurring ledger jobs: the daily overdue sweep and the
// monthly rent generation. Both jobs take a database advisory lock, so running
// several instances of the binary is safe.
type Scheduler struct {
	cron      *cron.Cron
	ledger    *services.LedgerService
	reporting *services.ReportingService
}

func NewScheduler(ledger *services.LedgerService, reporting *services.ReportingService) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(timeutil.EAT)),
		ledger:    ledger,
		reporting: reporting,
	}
}

// Start registers the configured schedules and starts the cron loop
func (s *Scheduler) Start(cfg *config.Config) error {
	if _, err := s.cron.AddFunc(cfg.Jobs.OverdueSchedule, s.runOverdueSweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cfg.Jobs.GenerateSchedule, s.runMonthlyGeneration); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[Jobs] scheduler started (overdue %q, generate %q)",
		cfg.Jobs.OverdueSchedule, cfg.Jobs.GenerateSchedule)
	return nil
}

// Stop waits for any running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	marked, err := s.ledger.UpdateOverdueStatuses(ctx, timeutil.Now())
	if err != nil {
		log.Printf("[Jobs] overdue sweep failed: %v", err)
		return
	}
	log.Printf("[Jobs] overdue sweep done, %d records marked", marked)
}

func (s *Scheduler) runMonthlyGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	now := timeutil.Now()
	result, err := s.ledger.GenerateMonthlyPayments(ctx, models.GeneratePaymentsRequest{
		Month: int(now.Month()),
		Year:  now.Year(),
	})
	if err != nil {
		log.Printf("[Jobs] monthly generation failed: %v", err)
		return
	}
	log.Printf("[Jobs] monthly generation done, %d records created", result.Created)

	// Archive last month's final collection report now that its billing
	// cycle is closed
	prev := now.AddDate(0, -1, 0)
	if err := s.reporting.ArchiveMonthlyReport(ctx, int(prev.Month()), prev.Year()); err != nil {
		log.Printf("[Jobs] report archive failed: %v", err)
	}
}
