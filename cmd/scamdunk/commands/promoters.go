package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/scamdunk/internal/contracts"
)

// promotersCmd represents the promoters command
var promotersCmd = &cobra.Command{
	Use:   "promoters",
	Short: "Promoter database",
	Long: `Builds and inspects the promoter database derived from the scheme records.

Example:
  go run ./cmd/scamdunk promoters rebuild
  go run ./cmd/scamdunk promoters list --risk SERIAL_OFFENDER`,
}

var (
	promotersRebuildCmd = &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate the promoter database",
		RunE:  runPromotersRebuild,
	}

	promotersListCmd = &cobra.Command{
		Use:   "list",
		Short: "List promoters",
		RunE:  runPromotersList,
	}
)

var promotersRisk string

func init() {
	rootCmd.AddCommand(promotersCmd)
	promotersCmd.AddCommand(promotersRebuildCmd)
	promotersCmd.AddCommand(promotersListCmd)

	promotersListCmd.Flags().StringVar(&promotersRisk, "risk", "", "filter by risk level")
}

func runPromotersRebuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pdb, err := a.promoters.Rebuild(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(pdb)
	}
	PrintSuccess(fmt.Sprintf("Promoter database rebuilt: %d promoters, %d active, %d serial offenders",
		pdb.TotalPromoters, pdb.ActivePromoters, pdb.SerialOffenders))
	PrintKeyValue("File", a.cfg.Schemes.PromoterPath, 5)
	return nil
}

func runPromotersList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pdb, err := a.promoters.Get(ctx)
	if err != nil {
		return err
	}

	risk := contracts.PromoterRisk(upper(promotersRisk))
	entries := make([]contracts.PromoterEntry, 0, len(pdb.Promoters))
	for _, p := range pdb.Promoters {
		if risk == "" || p.RiskLevel == risk {
			entries = append(entries, p)
		}
	}

	if jsonOutput {
		return printJSON(entries)
	}
	if len(entries) == 0 {
		PrintInfo("No promoters")
		return nil
	}

	widths := []int{40, 16, 6, 7, 24}
	PrintTableHeader([]string{"PROMOTER", "RISK", "POSTS", "ACTIVE", "STOCKS"}, widths)
	for _, p := range entries {
		PrintTableRow([]string{
			p.PromoterID,
			string(p.RiskLevel),
			strconv.Itoa(p.TotalPosts),
			strconv.FormatBool(p.IsActive),
			strings.Join(p.Symbols(), ","),
		}, widths)
	}
	return nil
}
