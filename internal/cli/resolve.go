package cli

import (
	"fmt"

	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/resolve"
	"github.com/asher407/hotwave/internal/store"
	"github.com/spf13/cobra"
)

var (
	resolveMaxEdit  int
	resolveMaxDelta int
	resolveOut      string
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Rebuild the keyword identity mapping from the corpus",
	Long: `Resolve scans every snapshot in the corpus, groups keyword variants
(full/half width, bracket tags, hash marks, near-duplicates) into stable
identities, and saves the mapping for the other commands to use.

The mapping is fully derived: rerunning resolve over the same corpus with
the same thresholds produces the identical mapping and version.`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().IntVar(&resolveMaxEdit, "max-edit-distance", -1, "edit distance bound for near-duplicate merging (-1 = config value)")
	resolveCmd.Flags().IntVar(&resolveMaxDelta, "max-length-delta", -1, "length difference bound for near-duplicate merging (-1 = config value)")
	resolveCmd.Flags().StringVar(&resolveOut, "out", "", "mapping output path (default: <derived_dir>/mapping.json)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if resolveMaxEdit >= 0 {
		cfg.Resolver.MaxEditDistance = resolveMaxEdit
	}
	if resolveMaxDelta >= 0 {
		cfg.Resolver.MaxLengthDelta = resolveMaxDelta
	}

	s, err := store.Open(cfg.Store.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	observations := resolve.ObserveStore(s)
	mapping := resolve.NewResolver(cfg.Resolver).Resolve(observations)

	path := resolveOut
	if path == "" {
		path = mappingPath(cfg)
	}
	if err := mapping.Save(path); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}

	low := 0
	for _, id := range mapping.Identities {
		if id.Confidence == model.ConfidenceLow {
			low++
		}
	}
	fmt.Printf("Resolved %d raw titles into %d identities (%d low confidence)\n",
		len(observations), len(mapping.Identities), low)
	fmt.Printf("Mapping version %s written to %s\n", mapping.Version, path)
	return nil
}
