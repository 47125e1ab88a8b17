package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Regulatory alert list",
}

var alertsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Scrape the trading suspensions page",
	Long: `Downloads the SEC trading suspensions page, extracts the tickers and
stores them in the shared cache (when Redis is enabled).

Example:
  go run ./cmd/scamdunk alerts refresh`,
	RunE: runAlertsRefresh,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsRefreshCmd)
}

func runAlertsRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.alerts.Refresh(ctx)
	if err != nil {
		return err
	}

	tickers := a.alertList.Tickers()
	if jsonOutput {
		return printJSON(tickers)
	}
	PrintSuccess(fmt.Sprintf("Scraped %d tickers (%d with seed list)", n, len(tickers)))
	fmt.Println(strings.Join(tickers, " "))
	return nil
}
