package cli

import (
	"fmt"

	"github.com/asher407/hotwave/internal/graph"
	"github.com/spf13/cobra"
)

var (
	graphFrom      string
	graphTo        string
	graphWindow    int
	graphMinWeight float64
	graphHalfLife  float64
	graphOut       string
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the keyword co-occurrence graph for a date range",
	Long: `Graph links identities that trend together. With no window, only
identities sharing a snapshot are linked; --window also links identities
appearing within N days of each other. --half-life discounts old
co-occurrences relative to the range end.

Example:
  hotwave graph --from 2025-01-01 --to 2025-03-31
  hotwave graph --from 2025-01-01 --to 2025-12-31 --window 3 --half-life 30 --out graph.json`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVar(&graphFrom, "from", "", "range start date, YYYY-MM-DD (default: first stored date)")
	graphCmd.Flags().StringVar(&graphTo, "to", "", "range end date, YYYY-MM-DD (default: last stored date)")
	graphCmd.Flags().IntVar(&graphWindow, "window", -1, "co-occurrence window in days (-1 = config value, 0 = same snapshot only)")
	graphCmd.Flags().Float64Var(&graphMinWeight, "min-weight", -1, "prune edges below this weight (-1 = config value)")
	graphCmd.Flags().Float64Var(&graphHalfLife, "half-life", -1, "recency decay half-life in days (-1 = config value, 0 = no decay)")
	graphCmd.Flags().StringVar(&graphOut, "out", "", "output JSON path (default: stdout)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if graphWindow >= 0 {
		cfg.Graph.WindowDays = graphWindow
	}
	if graphMinWeight >= 0 {
		cfg.Graph.MinWeight = graphMinWeight
	}
	if graphHalfLife >= 0 {
		cfg.Graph.DecayHalfLife = graphHalfLife
	}

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}
	from, to, err := rangeOrCorpus(eng, graphFrom, graphTo)
	if err != nil {
		return err
	}

	g := graph.NewBuilder(eng, cfg.Graph).GetRelationGraph(from, to)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d nodes, %d edges (%s..%s)\n", len(g.Nodes), len(g.Edges), from, to)
	}
	return writeJSON(graphOut, g)
}
