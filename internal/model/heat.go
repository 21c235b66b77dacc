package model

import "fmt"

// Weights configures the composite heat index. Each component weight must be
// non-negative; the engine renormalizes any non-negative set so the composite
// stays interpretable on a 0..1 scale.
type Weights struct {
	Frequency float64 `json:"frequency" yaml:"frequency" mapstructure:"frequency"`
	Rank      float64 `json:"rank" yaml:"rank" mapstructure:"rank"`
	Duration  float64 `json:"duration" yaml:"duration" mapstructure:"duration"`
	Sentiment float64 `json:"sentiment" yaml:"sentiment" mapstructure:"sentiment"`
}

// DefaultWeights is the documented default weighting. It sums to 1.
func DefaultWeights() Weights {
	return Weights{Frequency: 0.40, Rank: 0.30, Duration: 0.15, Sentiment: 0.15}
}

// Normalized returns the weights scaled to sum to 1. It rejects negative
// weights and an all-zero set.
func (w Weights) Normalized() (Weights, error) {
	if w.Frequency < 0 || w.Rank < 0 || w.Duration < 0 || w.Sentiment < 0 {
		return Weights{}, fmt.Errorf("heat weights must be non-negative: %+v", w)
	}
	sum := w.Frequency + w.Rank + w.Duration + w.Sentiment
	if sum == 0 {
		return Weights{}, fmt.Errorf("heat weights sum to zero")
	}
	return Weights{
		Frequency: w.Frequency / sum,
		Rank:      w.Rank / sum,
		Duration:  w.Duration / sum,
		Sentiment: w.Sentiment / sum,
	}, nil
}

// ComponentBreakdown carries the normalized per-component values behind a
// composite score, so every score stays explainable.
type ComponentBreakdown struct {
	Frequency float64 `json:"frequency"`
	Rank      float64 `json:"rank"`
	Duration  float64 `json:"duration"`
	Sentiment float64 `json:"sentiment"`
}

// HeatIndexRecord is the composite score of one keyword identity over one
// period. Appearances counts distinct snapshots containing the identity;
// Category is the most frequent category among its entries ("" when none).
type HeatIndexRecord struct {
	Identity    string             `json:"identity"`
	Category    string             `json:"category,omitempty"`
	Period      string             `json:"period"`
	Composite   float64            `json:"composite"`
	Components  ComponentBreakdown `json:"components"`
	Appearances int                `json:"appearances"`
}
