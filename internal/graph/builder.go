// Package graph derives the weighted co-occurrence graph of keyword
// identities: plain node/edge data for the external visualization layer.
package graph

import (
	"math"
	"sort"

	"github.com/asher407/hotwave/internal/logger"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/query"
)

// Builder accumulates co-occurrence weights over the query engine. Like the
// heat engine it is a pure read-only aggregation.
type Builder struct {
	q   *query.Engine
	cfg model.GraphConfig
}

// NewBuilder creates a builder with the given window and pruning policy.
func NewBuilder(q *query.Engine, cfg model.GraphConfig) *Builder {
	return &Builder{q: q, cfg: cfg}
}

type pairKey struct {
	a, b string // a < b
}

// Build computes the graph over [from, to]. WindowDays widens co-occurrence
// from "same snapshot" (the default) to "within N days"; a non-zero decay
// half-life weighs recent co-appearances more, anchored at the end of the
// range, which distinguishes "current" graphs from flat historical ones.
// Edges below MinWeight are pruned as noise; every identity seen in the
// range stays in the node set.
func (b *Builder) Build(from, to model.Date) model.Graph {
	dates := b.q.ListDates(from, to)

	// Identity sets per date, plus per-identity appearance counts and
	// category votes for the node list.
	perDate := make(map[model.Date][]string)
	appearances := make(map[string]int)
	categories := make(map[string]map[string]int)

	for _, date := range dates {
		snaps, ok := b.q.Snapshots(date)
		if !ok {
			continue
		}
		seen := make(map[string]bool)
		for _, snap := range snaps {
			inSnap := make(map[string]bool)
			for _, entry := range snap.Entries {
				id := b.q.Mapping().Canonical(entry.Title)
				inSnap[id] = true
				if entry.Category != "" {
					if categories[id] == nil {
						categories[id] = make(map[string]int)
					}
					categories[id][entry.Category]++
				}
			}
			for id := range inSnap {
				appearances[id]++
				seen[id] = true
			}
		}
		ids := make([]string, 0, len(seen))
		for id := range seen {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		perDate[date] = ids
	}

	weights := make(map[pairKey]float64)
	if b.cfg.WindowDays <= 0 {
		b.accumulateSameSnapshot(dates, to, weights)
	} else {
		b.accumulateWindow(dates, perDate, to, weights)
	}

	return b.assemble(appearances, categories, weights)
}

// GetRelationGraph is the reporting-boundary read over Build.
func (b *Builder) GetRelationGraph(from, to model.Date) model.Graph {
	return b.Build(from, to)
}

// accumulateSameSnapshot counts pairs appearing in one snapshot together.
func (b *Builder) accumulateSameSnapshot(dates []model.Date, ref model.Date, weights map[pairKey]float64) {
	for _, date := range dates {
		snaps, ok := b.q.Snapshots(date)
		if !ok {
			continue
		}
		decay := b.decay(date, ref)
		for _, snap := range snaps {
			seen := make(map[string]bool)
			for _, entry := range snap.Entries {
				seen[b.q.Mapping().Canonical(entry.Title)] = true
			}
			ids := make([]string, 0, len(seen))
			for id := range seen {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for i := 0; i < len(ids); i++ {
				for j := i + 1; j < len(ids); j++ {
					weights[pairKey{ids[i], ids[j]}] += decay
				}
			}
		}
	}
}

// accumulateWindow counts pairs appearing within WindowDays of each other.
// Each ordered date pair is visited once, so co-appearances are not double
// counted.
func (b *Builder) accumulateWindow(dates []model.Date, perDate map[model.Date][]string, ref model.Date, weights map[pairKey]float64) {
	for i, d1 := range dates {
		for k := i; k < len(dates); k++ {
			d2 := dates[k]
			if d2.Time().Sub(d1.Time()).Hours()/24 > float64(b.cfg.WindowDays) {
				break
			}
			decay := b.decay(d2, ref)
			if d1 == d2 {
				ids := perDate[d1]
				for x := 0; x < len(ids); x++ {
					for y := x + 1; y < len(ids); y++ {
						weights[pairKey{ids[x], ids[y]}] += decay
					}
				}
				continue
			}
			for _, a := range perDate[d1] {
				for _, c := range perDate[d2] {
					if a == c {
						continue
					}
					key := pairKey{a, c}
					if c < a {
						key = pairKey{c, a}
					}
					weights[key] += decay
				}
			}
		}
	}
}

// decay weighs a co-appearance by its age relative to the end of the range.
func (b *Builder) decay(date, ref model.Date) float64 {
	if b.cfg.DecayHalfLife <= 0 {
		return 1
	}
	ageDays := ref.Time().Sub(date.Time()).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 * ageDays / b.cfg.DecayHalfLife)
}

// assemble produces sorted, pruned node/edge lists.
func (b *Builder) assemble(appearances map[string]int, categories map[string]map[string]int, weights map[pairKey]float64) model.Graph {
	g := model.Graph{}

	ids := make([]string, 0, len(appearances))
	for id := range appearances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		g.Nodes = append(g.Nodes, model.GraphNode{
			ID:       id,
			Category: topCategory(categories[id]),
			Weight:   appearances[id],
		})
	}

	keys := make([]pairKey, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	for _, k := range keys {
		if weights[k] < b.cfg.MinWeight {
			continue
		}
		g.Edges = append(g.Edges, model.GraphEdge{Source: k.a, Target: k.b, Weight: weights[k]})
	}

	logger.Log.WithField("nodes", len(g.Nodes)).WithField("edges", len(g.Edges)).
		Debug("relation graph built")
	return g
}

// topCategory picks the most frequent category vote, ties broken lexically.
func topCategory(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for c := range counts {
		keys = append(keys, c)
	}
	sort.Strings(keys)
	best, bestN := "", 0
	for _, c := range keys {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}
