package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/asher407/hotwave/internal/cache"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/query"
	"github.com/asher407/hotwave/internal/sentiment"
	"github.com/spf13/cobra"
)

var (
	annotateFrom    string
	annotateTo      string
	annotateMaxRank int
	annotateOut     string
	annotateTimeout time.Duration
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Score entries with the configured sentiment provider",
	Long: `Annotate scans the given date range, sends each entry title to the
configured sentiment provider, and writes the annotations for heat and
report commands to pick up.

Scores are cached per provider model, so re-running annotate only pays
for entries not seen before. An entry whose call fails stays in the
output with no sentiment; the rest of the batch is unaffected.

Example:
  hotwave annotate --from 2025-01-01 --to 2025-01-31
  hotwave annotate --from 2025-01-01 --to 2025-12-31 --max-rank 10`,
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVar(&annotateFrom, "from", "", "range start date, YYYY-MM-DD (default: first stored date)")
	annotateCmd.Flags().StringVar(&annotateTo, "to", "", "range end date, YYYY-MM-DD (default: last stored date)")
	annotateCmd.Flags().IntVar(&annotateMaxRank, "max-rank", 0, "only annotate entries at this rank or better (0 = all)")
	annotateCmd.Flags().StringVar(&annotateOut, "out", "", "annotations output path (default: <derived_dir>/annotations.json)")
	annotateCmd.Flags().DurationVar(&annotateTimeout, "timeout", 30*time.Minute, "overall batch timeout")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Sentiment.Provider == "" {
		return fmt.Errorf("no sentiment provider configured (set sentiment.provider, e.g. openai)")
	}

	scorer, err := sentiment.NewScorer(cfg.Sentiment.Provider, cfg.Sentiment.Model, cfg.Sentiment.APIKey, cfg.Sentiment.BaseURL)
	if err != nil {
		return err
	}

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}
	from, to, err := rangeOrCorpus(eng, annotateFrom, annotateTo)
	if err != nil {
		return err
	}

	scanner := eng.Scan(from, to, query.Filter{MaxRank: annotateMaxRank})
	var reqs []sentiment.Request
	for scanner.Next() {
		e := scanner.Entry()
		reqs = append(reqs, sentiment.Request{
			Date:     e.Date,
			Entry:    e.Entry,
			Identity: eng.Mapping().Canonical(e.Entry.Title),
		})
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no entries to annotate in %s..%s", from, to)
	}

	ctx, cancel := context.WithTimeout(context.Background(), annotateTimeout)
	defer cancel()

	c := cache.NewLayered(cfg.Sentiment.CacheTTL, cfg.Store.DerivedDir+"/sentiment-cache", cfg.Sentiment.CacheTTL)
	annotator := sentiment.NewAnnotator(scorer, c, cfg.Sentiment)

	annotated := annotator.AnnotateBatch(ctx, reqs)

	scored := 0
	for _, a := range annotated {
		if a.Sentiment != nil {
			scored++
		}
	}
	fmt.Printf("Annotated %d/%d entries (%s..%s)\n", scored, len(annotated), from, to)

	path := annotateOut
	if path == "" {
		path = annotationsPath(cfg)
	}
	return writeJSON(path, annotated)
}

// loadAnnotationsFor reads saved annotations and keeps those inside the
// period. Analytics tolerate a missing or partial file.
func loadAnnotationsFor(cfg *model.Config, period model.Period) ([]model.AnnotatedEntry, error) {
	all, err := readAnnotations(annotationsPath(cfg))
	if err != nil {
		return nil, err
	}
	var out []model.AnnotatedEntry
	for _, a := range all {
		if period.Contains(a.Date) {
			out = append(out, a)
		}
	}
	return out, nil
}
