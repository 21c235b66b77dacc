// Package heat aggregates resolved, annotated entries into per-period
// composite scores: a weighted blend of frequency, rank, duration, and
// sentiment components, each normalized so the composite stays on a 0..1
// scale and every score remains explainable from its breakdown.
package heat

import (
	"fmt"
	"sort"
	"time"

	"github.com/asher407/hotwave/internal/logger"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/query"
)

// Engine computes heat index records over the query engine. It is a pure,
// read-only aggregation: running it twice over the same corpus and weights
// yields identical records, regardless of ingestion order.
type Engine struct {
	q       *query.Engine
	weights model.Weights
}

// NewEngine creates an engine with renormalized weights.
func NewEngine(q *query.Engine, cfg model.HeatConfig) (*Engine, error) {
	w, err := cfg.Weights.Normalized()
	if err != nil {
		return nil, fmt.Errorf("heat weights: %w", err)
	}
	return &Engine{q: q, weights: w}, nil
}

// identityAgg accumulates one identity's raw observations inside a period.
type identityAgg struct {
	snapshots  map[string]bool // distinct snapshots containing the identity
	invRankSum float64
	count      int
	first      time.Time
	last       time.Time
	categories map[string]int
}

// Compute returns one record per identity appearing in the period, sorted by
// composite score. Annotations are optional; entries without an available
// score are excluded from the sentiment mean, never counted as zero.
//
// The frequency denominator is the number of snapshots actually collected in
// the period, so days with no collection shrink the denominator instead of
// diluting every identity's score.
func (e *Engine) Compute(period model.Period, annotations []model.AnnotatedEntry) []model.HeatIndexRecord {
	aggs := make(map[string]*identityAgg)
	totalSnapshots := 0

	for _, date := range e.q.ListDates(period.Start, period.End) {
		snaps, ok := e.q.Snapshots(date)
		if !ok {
			continue
		}
		for _, snap := range snaps {
			totalSnapshots++
			snapID := string(date) + "T" + snap.Clock
			captured := snap.CaptureTime()

			for _, entry := range snap.Entries {
				id := e.q.Mapping().Canonical(entry.Title)
				agg, ok := aggs[id]
				if !ok {
					agg = &identityAgg{
						snapshots:  make(map[string]bool),
						categories: make(map[string]int),
						first:      captured,
						last:       captured,
					}
					aggs[id] = agg
				}
				agg.snapshots[snapID] = true
				agg.invRankSum += 1 / float64(entry.Rank)
				agg.count++
				if captured.Before(agg.first) {
					agg.first = captured
				}
				if captured.After(agg.last) {
					agg.last = captured
				}
				if entry.Category != "" {
					agg.categories[entry.Category]++
				}
			}
		}
	}

	if totalSnapshots == 0 {
		return nil
	}

	// Sentiment means per identity, available scores only.
	sentSum := make(map[string]float64)
	sentN := make(map[string]int)
	for _, ann := range annotations {
		if ann.Sentiment == nil || !period.Contains(ann.Date) {
			continue
		}
		abs := ann.Sentiment.Score
		if abs < 0 {
			abs = -abs
		}
		sentSum[ann.Identity] += abs
		sentN[ann.Identity]++
	}

	// The rank component is normalized by the best mean(1/rank) observed in
	// the period, so it effectively spans 0..1 per period.
	maxMeanInvRank := 0.0
	for _, agg := range aggs {
		if m := agg.invRankSum / float64(agg.count); m > maxMeanInvRank {
			maxMeanInvRank = m
		}
	}

	periodSpan := float64(period.Days() - 1)
	if periodSpan < 1 {
		periodSpan = 1
	}

	records := make([]model.HeatIndexRecord, 0, len(aggs))
	for id, agg := range aggs {
		components := model.ComponentBreakdown{
			Frequency: float64(len(agg.snapshots)) / float64(totalSnapshots),
		}
		if maxMeanInvRank > 0 {
			components.Rank = (agg.invRankSum / float64(agg.count)) / maxMeanInvRank
		}
		spanDays := agg.last.Sub(agg.first).Hours() / 24
		components.Duration = spanDays / periodSpan
		if components.Duration > 1 {
			components.Duration = 1
		}
		if n := sentN[id]; n > 0 {
			components.Sentiment = sentSum[id] / float64(n)
		}

		records = append(records, model.HeatIndexRecord{
			Identity:    id,
			Category:    topCategory(agg.categories),
			Period:      period.Label,
			Composite:   e.composite(components),
			Components:  components,
			Appearances: len(agg.snapshots),
		})
	}

	sortRecords(records)
	logger.Log.WithField("period", period.Label).WithField("identities", len(records)).
		Debug("heat index computed")
	return records
}

// GetHeatIndex is the reporting-boundary read: top-K records of a period.
// topK <= 0 returns every record.
func (e *Engine) GetHeatIndex(period model.Period, annotations []model.AnnotatedEntry, topK int) []model.HeatIndexRecord {
	records := e.Compute(period, annotations)
	if topK > 0 && len(records) > topK {
		records = records[:topK]
	}
	return records
}

func (e *Engine) composite(c model.ComponentBreakdown) float64 {
	return e.weights.Frequency*c.Frequency +
		e.weights.Rank*c.Rank +
		e.weights.Duration*c.Duration +
		e.weights.Sentiment*c.Sentiment
}

// sortRecords orders by composite score with the documented deterministic
// tie-break: higher frequency component wins, then lexical order of the
// canonical label.
func sortRecords(records []model.HeatIndexRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Composite != records[j].Composite {
			return records[i].Composite > records[j].Composite
		}
		if records[i].Components.Frequency != records[j].Components.Frequency {
			return records[i].Components.Frequency > records[j].Components.Frequency
		}
		return records[i].Identity < records[j].Identity
	})
}

// topCategory picks the most frequent category, ties broken lexically.
func topCategory(counts map[string]int) string {
	best := ""
	bestN := 0
	keys := make([]string, 0, len(counts))
	for c := range counts {
		keys = append(keys, c)
	}
	sort.Strings(keys)
	for _, c := range keys {
		if counts[c] > bestN {
			best = c
			bestN = counts[c]
		}
	}
	return best
}
