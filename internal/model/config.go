package model

import "time"

// Config is the full application configuration. Values come from (highest to
// lowest priority) CLI flags, HOTWAVE_* environment variables, the config
// file, and DefaultConfig.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Sentiment SentimentConfig `yaml:"sentiment" mapstructure:"sentiment"`
	Heat      HeatConfig      `yaml:"heat" mapstructure:"heat"`
	Graph     GraphConfig     `yaml:"graph" mapstructure:"graph"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig locates the date-partitioned snapshot corpus and the derived,
// rebuildable artifacts next to it.
type StoreConfig struct {
	DataDir    string `yaml:"data_dir" mapstructure:"data_dir"`
	DerivedDir string `yaml:"derived_dir" mapstructure:"derived_dir"`
}

// ResolverConfig exposes the fuzzy-merge policy. The thresholds are a policy
// choice, not derivable from the data; defaults are deliberately conservative.
type ResolverConfig struct {
	MaxEditDistance int `yaml:"max_edit_distance" mapstructure:"max_edit_distance"`
	MaxLengthDelta  int `yaml:"max_length_delta" mapstructure:"max_length_delta"`
}

// SentimentConfig configures the external scoring capability and the
// annotation batch behavior.
type SentimentConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // "openai" or "" (disabled)
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Workers           int           `yaml:"workers" mapstructure:"workers"`
	CallTimeout       time.Duration `yaml:"call_timeout" mapstructure:"call_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// HeatConfig configures the heat index engine.
type HeatConfig struct {
	Weights Weights `yaml:"weights" mapstructure:"weights"`
	TopK    int     `yaml:"top_k" mapstructure:"top_k"`
}

// GraphConfig configures the relation graph builder.
type GraphConfig struct {
	WindowDays    int     `yaml:"window_days" mapstructure:"window_days"` // 0 = same snapshot only
	MinWeight     float64 `yaml:"min_weight" mapstructure:"min_weight"`
	DecayHalfLife float64 `yaml:"decay_half_life_days" mapstructure:"decay_half_life_days"` // 0 = no decay
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			DataDir:    "data_processed",
			DerivedDir: "derived",
		},
		Resolver: ResolverConfig{
			MaxEditDistance: 1,
			MaxLengthDelta:  2,
		},
		Sentiment: SentimentConfig{
			Provider:          "",
			Model:             "gpt-4o-mini",
			Workers:           8,
			CallTimeout:       10 * time.Second,
			RequestsPerSecond: 5,
			CacheTTL:          30 * 24 * time.Hour,
		},
		Heat: HeatConfig{
			Weights: DefaultWeights(),
			TopK:    50,
		},
		Graph: GraphConfig{
			WindowDays:    0,
			MinWeight:     2,
			DecayHalfLife: 0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
