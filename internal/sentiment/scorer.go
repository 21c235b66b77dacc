// Package sentiment wraps the external scoring capability behind a narrow
// interface and adds caching and failure isolation around it. The scorer is
// the only place the core depends on an external scoring system.
package sentiment

import (
	"context"
	"fmt"
	"strings"
)

// Scorer is the injected scoring capability: one text in, one score in
// [-1, 1] out. Implementations are treated as pure functions of their input
// for a given model version.
type Scorer interface {
	// Name identifies the provider.
	Name() string
	// ModelVersion tags cache entries; changing the model invalidates them.
	ModelVersion() string
	// Score rates the sentiment of text in [-1, 1].
	Score(ctx context.Context, text string) (float64, error)
}

// NewScorer builds the configured provider. An empty provider string means
// annotation is disabled and returns a nil Scorer.
func NewScorer(provider, model, apiKey, baseURL string) (Scorer, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIScorer(model, apiKey, baseURL)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider: %s (supported: openai)", provider)
	}
}

// FuncScorer adapts a plain function, mainly for deterministic test stubs.
type FuncScorer struct {
	ProviderName string
	Version      string
	Fn           func(ctx context.Context, text string) (float64, error)
}

func (f *FuncScorer) Name() string         { return f.ProviderName }
func (f *FuncScorer) ModelVersion() string { return f.Version }
func (f *FuncScorer) Score(ctx context.Context, text string) (float64, error) {
	return f.Fn(ctx, text)
}
