package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/asher407/hotwave/internal/logger"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/query"
	"github.com/asher407/hotwave/internal/resolve"
	"github.com/asher407/hotwave/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	dataDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hotwave",
	Short: "Hotwave - hot search history analytics",
	Long: `Hotwave ingests daily hot-search ranking snapshots, resolves keyword
variants into stable identities, and derives analytics over the corpus:
time series, composite heat indices, annual reports, and keyword
co-occurrence graphs.

The snapshot corpus is the only source of truth. Everything else is
derived and can be rebuilt from it at any time.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Hotwave.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hotwave v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.hotwave/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "snapshot corpus directory (overrides config)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.hotwave")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match HOTWAVE_*
	viper.SetEnvPrefix("HOTWAVE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, environment, and flags into a
// single Config and initializes logging from it.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if dataDir != "" {
		cfg.Store.DataDir = dataDir
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if cfg.Sentiment.APIKey == "" {
		cfg.Sentiment.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mappingPath(cfg *model.Config) string {
	return filepath.Join(cfg.Store.DerivedDir, "mapping.json")
}

func annotationsPath(cfg *model.Config) string {
	return filepath.Join(cfg.Store.DerivedDir, "annotations.json")
}

// openEngine opens the snapshot store and builds a query engine on top of it.
// A saved identity mapping is used when present; otherwise the mapping is
// recomputed from the corpus in memory.
func openEngine(cfg *model.Config) (*query.Engine, error) {
	s, err := store.Open(cfg.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	mapping, err := resolve.LoadMapping(mappingPath(cfg))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load identity mapping: %w", err)
		}
		logger.Log.Debug("no saved identity mapping, resolving from corpus")
		mapping = resolve.NewResolver(cfg.Resolver).Resolve(resolve.ObserveStore(s))
	}
	return query.NewEngine(s, mapping), nil
}

// writeJSON renders v as indented JSON to path, or to stdout when path is
// empty.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}

// readAnnotations loads a previously produced annotation batch. A missing
// file is not an error; analytics simply run without sentiment.
func readAnnotations(path string) ([]model.AnnotatedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	var out []model.AnnotatedEntry
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse annotations %s: %w", path, err)
	}
	return out, nil
}
