package cli

import (
	"fmt"

	"github.com/asher407/hotwave/internal/heat"
	"github.com/asher407/hotwave/internal/model"
	"github.com/spf13/cobra"
)

var (
	heatTopK int
	heatOut  string

	reportTopK int
	reportOut  string
)

// heatCmd represents the heat command
var heatCmd = &cobra.Command{
	Use:   "heat <period>",
	Short: "Rank identities by composite heat index for a period",
	Long: `Heat computes a composite index per identity over a day, month, or year
from frequency, best rank, sentiment, and presence duration, and prints
the top entries with their component breakdown.

Days without a collected snapshot do not dilute the index; frequency is
relative to the snapshots that actually exist.

Example:
  hotwave heat 2025-03
  hotwave heat 2025 --top 100 --out heat.json`,
	Args: cobra.ExactArgs(1),
	RunE: runHeat,
}

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <year>",
	Short: "Generate the annual top-K report",
	Long: `Report builds the yearly summary: the overall top identities by heat
index plus the top identities per category.

Example:
  hotwave report 2025 --out report-2025.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(heatCmd)
	rootCmd.AddCommand(reportCmd)

	heatCmd.Flags().IntVar(&heatTopK, "top", 0, "number of entries to keep (0 = config value)")
	heatCmd.Flags().StringVar(&heatOut, "out", "", "output JSON path (default: stdout)")

	reportCmd.Flags().IntVar(&reportTopK, "top", 0, "entries per list (0 = config value)")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output JSON path (default: stdout)")
}

func runHeat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}

	period, err := model.ParsePeriod(args[0])
	if err != nil {
		return err
	}

	topK := heatTopK
	if topK <= 0 {
		topK = cfg.Heat.TopK
	}

	annotations, err := loadAnnotationsFor(cfg, period)
	if err != nil {
		return err
	}

	engine, err := heat.NewEngine(eng, cfg.Heat)
	if err != nil {
		return err
	}
	records := engine.GetHeatIndex(period, annotations, topK)
	if len(records) == 0 {
		return fmt.Errorf("no snapshots stored in %s", period.Label)
	}
	return writeJSON(heatOut, records)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}

	year := args[0]
	period, err := model.ParsePeriod(year)
	if err != nil {
		return err
	}

	topK := reportTopK
	if topK <= 0 {
		topK = cfg.Heat.TopK
	}

	annotations, err := loadAnnotationsFor(cfg, period)
	if err != nil {
		return err
	}

	engine, err := heat.NewEngine(eng, cfg.Heat)
	if err != nil {
		return err
	}
	report, err := engine.Annual(year, annotations, topK)
	if err != nil {
		return err
	}
	return writeJSON(reportOut, report)
}
