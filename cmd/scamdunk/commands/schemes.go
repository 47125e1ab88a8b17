package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/realtime"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/pkg/jsonfile"
	"github.com/wonny/scamdunk/pkg/logger"
)

// schemesCmd represents the schemes command
var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "Track and inspect suspected schemes",
	Long: `Applies daily batches to the scheme database and inspects its records.

Subcommands:
  track   - apply a daily batch file
  list    - list schemes (--status)
  show    - one scheme with its timeline
  watch   - follow the live event stream of a running API server

Example:
  go run ./cmd/scamdunk schemes track data/inbox/daily-scan-2024-03-01.json
  go run ./cmd/scamdunk schemes list --status ONGOING
  go run ./cmd/scamdunk schemes show SCH-ACME-s9n6o0
  go run ./cmd/scamdunk schemes watch --url ws://localhost:8080/ws/schemes`,
}

var (
	schemesTrackCmd = &cobra.Command{
		Use:   "track [batch.json]",
		Short: "Apply a daily batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchemesTrack,
	}

	schemesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List schemes",
		RunE:  runSchemesList,
	}

	schemesShowCmd = &cobra.Command{
		Use:   "show [scheme_id]",
		Short: "Show one scheme",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchemesShow,
	}

	schemesWatchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Follow scheme events",
		RunE:  runSchemesWatch,
	}
)

var (
	schemesDate   string
	schemesStatus string
	schemesURL    string
)

func init() {
	rootCmd.AddCommand(schemesCmd)
	schemesCmd.AddCommand(schemesTrackCmd)
	schemesCmd.AddCommand(schemesListCmd)
	schemesCmd.AddCommand(schemesShowCmd)
	schemesCmd.AddCommand(schemesWatchCmd)

	schemesTrackCmd.Flags().StringVar(&schemesDate, "date", "", "batch date (YYYY-MM-DD) when the file has none")
	schemesListCmd.Flags().StringVar(&schemesStatus, "status", "", "filter by status")
	schemesWatchCmd.Flags().StringVar(&schemesURL, "url", "ws://localhost:8080/ws/schemes", "scheme stream URL")
}

func runSchemesTrack(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var batch contracts.DailyBatch
	found, err := jsonfile.Read(args[0], &batch)
	if err != nil {
		return fmt.Errorf("read batch: %w", err)
	}
	if !found {
		return fmt.Errorf("batch file %s not found", args[0])
	}
	if schemesDate != "" {
		batch.Date = schemesDate
	}

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.tracking.Track(ctx, &batch)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(summary)
	}

	PrintDoubleSeparator()
	fmt.Printf("  Tracking run %s (%s)\n", summary.RunID, summary.Date)
	PrintSeparator()
	PrintKeyValue("Observations", strconv.Itoa(summary.Observations), 13)
	PrintKeyValue("Created", strconv.Itoa(len(summary.Created)), 13)
	PrintKeyValue("Updated", strconv.Itoa(len(summary.Updated)), 13)
	PrintKeyValue("Quiet", strconv.Itoa(len(summary.Quiet)), 13)
	PrintKeyValue("Skipped", strconv.Itoa(len(summary.Skipped)), 13)
	PrintKeyValue("Ignored", strconv.Itoa(summary.Ignored), 13)
	PrintKeyValue("Duplicates", strconv.Itoa(summary.Duplicates), 13)
	PrintKeyValue("Active", fmt.Sprintf("%d / %d", summary.Active, summary.Total), 13)
	if len(summary.Transitions) > 0 {
		PrintSeparator()
		for _, tr := range summary.Transitions {
			fmt.Printf("   %s  %s → %s\n", tr.SchemeID, tr.From, tr.To)
		}
	}
	PrintDoubleSeparator()
	return nil
}

func runSchemesList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	status := contracts.SchemeStatus(upper(schemesStatus))
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status: %s", schemesStatus)
	}

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	db, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	records := db.Filter(status)

	if jsonOutput {
		return printJSON(records)
	}

	if len(records) == 0 {
		PrintInfo("No schemes")
		return nil
	}

	widths := []int{20, 8, 20, 10, 5, 9, 9}
	PrintTableHeader([]string{"SCHEME", "SYMBOL", "STATUS", "FIRST", "DAYS", "PEAK", "FROM PEAK"}, widths)
	for _, rec := range records {
		PrintTableRow([]string{
			rec.SchemeID,
			rec.Symbol,
			string(rec.Status),
			rec.FirstDetected,
			strconv.Itoa(rec.DaysActive),
			fmt.Sprintf("%.4g", rec.PeakPrice),
			fmt.Sprintf("%.1f%%", rec.PriceChangeFromPeak),
		}, widths)
	}
	fmt.Printf("\n%d schemes (%d active, %d resolved)\n", db.TotalSchemes, db.ActiveSchemes, db.ResolvedSchemes)
	return nil
}

func runSchemesShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := schemes.Get(ctx, a.store, args[0])
	if errors.Is(err, schemes.ErrNotFound) {
		return fmt.Errorf("scheme %s not found", args[0])
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(rec)
	}

	PrintDoubleSeparator()
	fmt.Printf("  %s\n", rec.SchemeName)
	PrintSeparator()
	PrintKeyValue("ID", rec.SchemeID, 11)
	PrintKeyValue("Slug", schemes.Slug(rec.SchemeName), 11)
	PrintKeyValue("Status", string(rec.Status), 11)
	PrintKeyValue("Detected", rec.FirstDetected, 11)
	PrintKeyValue("Last seen", rec.LastSeen, 11)
	PrintKeyValue("Risk", fmt.Sprintf("%d (peak %d)", rec.CurrentRiskScore, rec.PeakRiskScore), 11)
	PrintKeyValue("Promotion", fmt.Sprintf("%d (peak %d)", rec.CurrentPromotionScore, rec.PeakPromotionScore), 11)
	PrintKeyValue("Price", fmt.Sprintf("%.4g → %.4g (peak %.4g)", rec.PriceAtDetection, rec.CurrentPrice, rec.PeakPrice), 11)
	PrintKeyValue("Change", fmt.Sprintf("%.1f%% from detection, %.1f%% from peak", rec.PriceChangeFromDetection, rec.PriceChangeFromPeak), 11)
	if len(rec.PromotionPlatforms) > 0 {
		PrintKeyValue("Platforms", strings.Join(rec.PromotionPlatforms, ", "), 11)
	}
	if len(rec.PromoterAccounts) > 0 {
		PrintKeyValue("Accounts", strconv.Itoa(len(rec.PromoterAccounts)), 11)
	}
	PrintSeparator()
	for _, ev := range rec.Timeline {
		fmt.Printf("   %s  %s\n", ev.Date, ev.Event)
	}
	PrintDoubleSeparator()
	return nil
}

func runSchemesWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintInfo("Watching " + schemesURL + " (Ctrl+C to stop)")
	err = realtime.NewSubscriber(schemesURL, log).Stream(ctx, func(ev realtime.Event) error {
		if jsonOutput {
			return printJSON(ev)
		}
		fmt.Printf("%s  %-18s %v\n", ev.Timestamp.Format("15:04:05"), ev.Type, ev.Data)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
