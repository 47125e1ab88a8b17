package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/scamdunk/internal/scheduler"
	"github.com/wonny/scamdunk/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled jobs",
	Long: `Starts the scheduler or manages its jobs.

Subcommands:
  start   - run the scheduler until interrupted
  list    - registered jobs and their next activation
  run     - run one job now and wait for it
  status  - job statistics of this process

Example:
  go run ./cmd/scamdunk scheduler start
  go run ./cmd/scamdunk scheduler list
  go run ./cmd/scamdunk scheduler run scheme_tracking`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers every job.

Registered jobs:
- scheme_tracking: SCHEME_TRACK_SCHEDULE (default weekdays 22:30), reads the inbox batch
- promoter_rebuild: weekdays 23:00
- alert_refresh: every 6 hours (ALERT_REFRESH_ENABLED=true)
- inbox_cleanup: Sundays 03:00

Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job statistics",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ScamDunk Scheduler ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	PrintList(sched.GetAllJobs())
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, closeApp, err := initScheduler()
	if err != nil {
		return err
	}
	defer closeApp()

	widths := []int{18, 18, 25}
	PrintTableHeader([]string{"JOB", "SCHEDULE", "NEXT RUN"}, widths)
	for _, name := range sched.GetAllJobs() {
		next, err := sched.NextRun(name)
		nextStr := next.Format("2006-01-02 15:04:05")
		if err != nil {
			nextStr = err.Error()
		}
		PrintTableRow([]string{name, sched.GetJobStats()[name].Schedule, nextStr}, widths)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, closeApp, err := initScheduler()
	if err != nil {
		return err
	}
	defer closeApp()

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJobSync(cmd.Context(), jobName); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess("Job completed")
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	sched, closeApp, err := initScheduler()
	if err != nil {
		return err
	}
	defer closeApp()

	stats := sched.GetJobStats()
	if jsonOutput {
		return printJSON(stats)
	}

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if next, err := sched.NextRun(jobName); err == nil {
			fmt.Printf("   Next Run: %s\n", next.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

// initScheduler wires a scheduler for one-shot commands
func initScheduler() (*scheduler.Scheduler, func(), error) {
	a, err := stderrApp(context.Background())
	if err != nil {
		return nil, nil, err
	}

	sched, err := newScheduler(a)
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("init scheduler: %w", err)
	}
	return sched, a.Close, nil
}

// newScheduler registers every job against the wired app
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	toAdd := []scheduler.Job{
		jobs.NewSchemeTrackingJob(a.tracking, a.cfg.Schemes.InboxDir, a.cfg.Schemes.TrackSchedule, a.log),
		jobs.NewPromoterRebuildJob(a.promoters, a.log),
		jobs.NewInboxCleanupJob(a.cfg.Schemes.InboxDir, a.cfg.Schemes.InboxRetention, a.log),
	}
	if a.cfg.Alerts.RefreshEnabled {
		toAdd = append(toAdd, jobs.NewAlertRefreshJob(a.alerts, a.log))
	}

	for _, job := range toAdd {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
