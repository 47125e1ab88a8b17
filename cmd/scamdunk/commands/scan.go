package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/scamdunk/internal/api/handlers"
	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/pkg/jsonfile"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [ticker]",
	Short: "Score one ticker",
	Long: `Scores a ticker with the same pipeline as POST /api/scan.

The optional --input file holds the request body (quote, priceHistory,
flags, crypto). Flags given on the command line override the file.

Example:
  go run ./cmd/scamdunk scan ACME --input acme.json
  go run ./cmd/scamdunk scan ACME --input acme.json --pitch "guaranteed 10x, act now"
  go run ./cmd/scamdunk scan ACME --input acme.json --return-7d 120 --volume-ratio 12 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var (
	scanInput       string
	scanAssetType   string
	scanPitch       string
	scanOTC         bool
	scanReturn7d    string
	scanVolumeRatio string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanInput, "input", "", "JSON request body file")
	scanCmd.Flags().StringVar(&scanAssetType, "asset-type", "", "stock or crypto")
	scanCmd.Flags().StringVar(&scanPitch, "pitch", "", "pitch text to check for behavioral red flags")
	scanCmd.Flags().BoolVar(&scanOTC, "otc", false, "treat the ticker as OTC listed")
	scanCmd.Flags().StringVar(&scanReturn7d, "return-7d", "", "override the 7-day return (percent)")
	scanCmd.Flags().StringVar(&scanVolumeRatio, "volume-ratio", "", "override the volume ratio vs average")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	body, err := scanBody(args[0])
	if err != nil {
		return err
	}

	a, err := stderrApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	req := handlers.NewScanHandler(a.normalizer, a.alertList, a.strategy, nil, a.log).Request(body)
	resp, err := a.strategy.Score(ctx, req)
	if err != nil {
		return fmt.Errorf("score %s: %w", req.Symbol(), err)
	}

	if jsonOutput {
		return printJSON(resp)
	}
	printRiskResponse(resp)
	return nil
}

func scanBody(ticker string) (*handlers.ScanBody, error) {
	body := &handlers.ScanBody{}
	if scanInput != "" {
		found, err := jsonfile.Read(scanInput, body)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("input file %s not found", scanInput)
		}
	}

	body.Ticker = ticker
	if scanAssetType != "" {
		body.AssetType = scanAssetType
	}
	if scanPitch != "" {
		body.PitchText = scanPitch
	}
	if scanOTC {
		body.IsOTC = true
	}

	var err error
	if body.SevenDayReturnPct, err = optionalFloat("return-7d", scanReturn7d, body.SevenDayReturnPct); err != nil {
		return nil, err
	}
	if body.VolumeRatioVsAvg, err = optionalFloat("volume-ratio", scanVolumeRatio, body.VolumeRatioVsAvg); err != nil {
		return nil, err
	}
	return body, nil
}

func optionalFloat(flag, value string, current *float64) (*float64, error) {
	if value == "" {
		return current, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &f, nil
}

func printRiskResponse(resp *contracts.RiskResponse) {
	PrintDoubleSeparator()
	fmt.Printf("  %s (%s)\n", resp.Ticker, resp.AssetType)
	PrintSeparator()
	PrintKeyValue("Risk Level", string(resp.RiskLevel), 12)
	PrintKeyValue("Score", strconv.Itoa(resp.TotalScore), 12)
	PrintKeyValue("Legitimate", strconv.FormatBool(resp.IsLegitimate), 12)
	PrintKeyValue("AI Backend", strconv.FormatBool(resp.UsedAIBackend), 12)
	if resp.FallbackReason != "" {
		PrintKeyValue("Fallback", resp.FallbackReason, 12)
	}
	if resp.AIScores != nil {
		PrintKeyValue("Probability", fmt.Sprintf("%.3f", resp.AIScores.RiskProbability), 12)
	}
	PrintSeparator()

	if len(resp.Signals) == 0 {
		PrintInfo("No signals triggered")
	} else {
		widths := []int{26, 12, 6, 50}
		PrintTableHeader([]string{"SIGNAL", "CATEGORY", "WEIGHT", "DESCRIPTION"}, widths)
		for _, s := range resp.Signals {
			PrintTableRow([]string{s.Code, string(s.Category), strconv.Itoa(s.Weight), s.Description}, widths)
		}
	}

	if len(resp.Explanations) > 0 {
		fmt.Println()
		PrintList(resp.Explanations)
	}
	PrintDoubleSeparator()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// upper normalizes a user-supplied enum value
func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
