package cli

import (
	"fmt"
	"sort"

	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/query"
	"github.com/spf13/cobra"
)

var (
	snapshotTime string
	snapshotOut  string

	scanFrom       string
	scanTo         string
	scanCategories []string
	scanMaxRank    int
	scanIdentity   string
	scanKeywords   []string
	scanMinHeat    float64
	scanMaxHeat    float64
	scanSort       string
	scanOut        string

	seriesGranularity string
	seriesFrom        string
	seriesTo          string
	seriesOut         string
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <date>",
	Short: "Show the ranking snapshot for a date",
	Long: `Snapshot prints one stored capture for the given date. Without --time
the latest capture of the day is chosen; with --time the capture taken at
that clock time.

Example:
  hotwave snapshot 2025-03-14
  hotwave snapshot 2025-03-14 --time 09:00 --out snap.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan entries across a date range with filters",
	Long: `Scan walks the corpus in date order and emits every entry matching all
given filters. Filters of the same kind are OR-ed (any category, any
keyword), different kinds are AND-ed.

Example:
  hotwave scan --from 2025-01-01 --to 2025-03-31 --category 体育 --max-rank 10
  hotwave scan --from 2025-01-01 --to 2025-12-31 --keyword 奥运 --out hits.json`,
	RunE: runScanEntries,
}

// datesCmd represents the dates command
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the dates that have stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, err := openEngine(cfg)
		if err != nil {
			return err
		}
		for _, d := range eng.ListDates("", "") {
			fmt.Println(d)
		}
		return nil
	},
}

// timeseriesCmd represents the timeseries command
var timeseriesCmd = &cobra.Command{
	Use:   "timeseries <identity>",
	Short: "Build a rank/heat time series for one identity",
	Long: `Timeseries emits one point per day (or per month) for the identity's
best placement, plus the list of dates inside the range where no snapshot
was collected. Absence of the keyword on a collected day yields no point
and no gap. Saved annotations, when present, put a sentiment score on each
point.

Example:
  hotwave timeseries 春晚 --from 2025-01-01 --to 2025-02-28
  hotwave timeseries 春晚 --granularity monthly --out series.json`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeseries,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(timeseriesCmd)

	snapshotCmd.Flags().StringVar(&snapshotTime, "time", "", "capture clock time, HH:MM (default: latest of the day)")
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "", "output JSON path (default: stdout)")

	scanCmd.Flags().StringVar(&scanFrom, "from", "", "range start date, YYYY-MM-DD (default: first stored date)")
	scanCmd.Flags().StringVar(&scanTo, "to", "", "range end date, YYYY-MM-DD (default: last stored date)")
	scanCmd.Flags().StringSliceVar(&scanCategories, "category", nil, "category filter, repeatable ("+query.Uncategorized+" matches unlabeled entries)")
	scanCmd.Flags().IntVar(&scanMaxRank, "max-rank", 0, "keep entries at this rank or better (0 = no bound)")
	scanCmd.Flags().StringVar(&scanIdentity, "identity", "", "keep entries whose title resolves to this identity")
	scanCmd.Flags().StringSliceVar(&scanKeywords, "keyword", nil, "title substring filter, repeatable")
	scanCmd.Flags().Float64Var(&scanMinHeat, "min-heat", -1, "minimum heat value (-1 = no bound)")
	scanCmd.Flags().Float64Var(&scanMaxHeat, "max-heat", -1, "maximum heat value (-1 = no bound)")
	scanCmd.Flags().StringVar(&scanSort, "sort", "time", "result order: time, rank, or heat")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "output JSON path (default: stdout)")

	timeseriesCmd.Flags().StringVar(&seriesGranularity, "granularity", "daily", "point granularity: daily or monthly")
	timeseriesCmd.Flags().StringVar(&seriesFrom, "from", "", "range start date, YYYY-MM-DD (default: first stored date)")
	timeseriesCmd.Flags().StringVar(&seriesTo, "to", "", "range end date, YYYY-MM-DD (default: last stored date)")
	timeseriesCmd.Flags().StringVar(&seriesOut, "out", "", "output JSON path (default: stdout)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}

	date, err := model.ParseDate(args[0])
	if err != nil {
		return err
	}
	snap, err := eng.GetSnapshot(date, snapshotTime)
	if err != nil {
		return err
	}
	return writeJSON(snapshotOut, snap)
}

// rangeOrCorpus fills missing range bounds from the stored extent.
func rangeOrCorpus(eng *query.Engine, from, to string) (model.Date, model.Date, error) {
	dates := eng.ListDates("", "")
	if len(dates) == 0 {
		return "", "", fmt.Errorf("snapshot corpus is empty")
	}
	lo, hi := dates[0], dates[len(dates)-1]
	if from != "" {
		d, err := model.ParseDate(from)
		if err != nil {
			return "", "", err
		}
		lo = d
	}
	if to != "" {
		d, err := model.ParseDate(to)
		if err != nil {
			return "", "", err
		}
		hi = d
	}
	return lo, hi, nil
}

func runScanEntries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}

	from, to, err := rangeOrCorpus(eng, scanFrom, scanTo)
	if err != nil {
		return err
	}

	filter := query.Filter{
		Categories:    scanCategories,
		MaxRank:       scanMaxRank,
		Identity:      scanIdentity,
		TitleKeywords: scanKeywords,
	}
	if scanMinHeat >= 0 {
		v := scanMinHeat
		filter.MinHeat = &v
	}
	if scanMaxHeat >= 0 {
		v := scanMaxHeat
		filter.MaxHeat = &v
	}

	entries := eng.Scan(from, to, filter).Collect()
	switch scanSort {
	case "time":
		// scanner order already
	case "rank":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Entry.Rank < entries[j].Entry.Rank })
	case "heat":
		sort.SliceStable(entries, func(i, j int) bool {
			hi, hj := entries[i].Entry.Heat, entries[j].Entry.Heat
			if hj == nil {
				return hi != nil
			}
			if hi == nil {
				return false
			}
			return *hi > *hj
		})
	default:
		return fmt.Errorf("unknown sort order %q (want time, rank, or heat)", scanSort)
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d entries matched in %s..%s\n", len(entries), from, to)
	}
	out := struct {
		Count   int                  `json:"count"`
		Entries []query.ScannedEntry `json:"entries"`
	}{Count: len(entries), Entries: entries}
	return writeJSON(scanOut, out)
}

func runTimeseries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}

	var granularity model.Granularity
	switch seriesGranularity {
	case "daily":
		granularity = model.GranularityDaily
	case "monthly":
		granularity = model.GranularityMonthly
	default:
		return fmt.Errorf("unknown granularity %q (want daily or monthly)", seriesGranularity)
	}

	from, to, err := rangeOrCorpus(eng, seriesFrom, seriesTo)
	if err != nil {
		return err
	}

	annotations, err := readAnnotations(annotationsPath(cfg))
	if err != nil {
		return err
	}

	canonical := eng.Mapping().Canonical(args[0])
	series, err := eng.GetTimeSeries(canonical, granularity, from, to, annotations)
	if err != nil {
		return err
	}
	return writeJSON(seriesOut, series)
}
