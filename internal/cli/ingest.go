package cli

import (
	"fmt"
	"os"

	"github.com/asher407/hotwave/internal/ingest"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/store"
	"github.com/spf13/cobra"
)

var (
	ingestSource       string
	ingestNoCategorize bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <dir-or-file>",
	Short: "Append collector output files to the snapshot corpus",
	Long: `Ingest reads collector JSON files (one capture per file) and appends
them to the date-partitioned snapshot corpus.

A snapshot whose content is already stored is skipped, so re-running
ingest over the same files is harmless. Malformed files are rejected
and reported without stopping the run.

Example:
  hotwave ingest ./data
  hotwave ingest ./backfill --source static-archive`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestSource, "source", string(model.SourceLive), "collection source tag for files that carry none")
	ingestCmd.Flags().BoolVar(&ingestNoCategorize, "no-categorize", false, "keep entries uncategorized instead of applying keyword rules")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Store.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var categorizer ingest.Categorizer
	if !ingestNoCategorize {
		categorizer = ingest.NewRuleCategorizer(ingest.DefaultRules())
	}
	in := ingest.NewIngestor(s, categorizer)

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var res *ingest.Result
	if info.IsDir() {
		res, err = in.IngestDir(path, ingestSource)
	} else {
		res = &ingest.Result{}
		err = in.IngestFile(path, ingestSource, res)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("Appended %d, skipped %d, rejected %d\n", res.Appended, res.Skipped, res.Rejected)
	for file, reason := range res.RejectedFiles {
		fmt.Fprintf(os.Stderr, "  rejected %s: %s\n", file, reason)
	}
	return nil
}
