package resolve

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/agext/levenshtein"

	"github.com/asher407/hotwave/internal/logger"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/store"
)

// Observation is one raw keyword as seen in the corpus.
type Observation struct {
	Raw       string
	Count     int
	FirstSeen model.Date
}

// Resolver groups raw keyword variants into identities. Exact matches on the
// normalized form merge first; leftover singletons then merge fuzzily when
// both the edit distance and the length difference stay inside the
// configured bounds. Fuzzy merges are tagged low confidence.
type Resolver struct {
	maxEditDistance int
	maxLengthDelta  int
}

// NewResolver creates a resolver with the configured merge policy.
func NewResolver(cfg model.ResolverConfig) *Resolver {
	maxEdit := cfg.MaxEditDistance
	if maxEdit < 0 {
		maxEdit = 0
	}
	maxDelta := cfg.MaxLengthDelta
	if maxDelta < 0 {
		maxDelta = 0
	}
	return &Resolver{maxEditDistance: maxEdit, maxLengthDelta: maxDelta}
}

// group is one in-progress identity during resolution.
type group struct {
	key        string // normalized anchor form
	variants   map[string]*Observation
	confidence model.Confidence
}

// Resolve computes the full identity mapping for the given observations.
// Running it twice over the same observations and parameters yields the same
// mapping.
func (r *Resolver) Resolve(observations []Observation) *Mapping {
	// Exact grouping by normalized form.
	groups := make(map[string]*group)
	for i := range observations {
		obs := observations[i]
		key := Normalize(obs.Raw)
		if key == "" {
			key = obs.Raw // degenerate titles keep their raw form
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key, variants: map[string]*Observation{}, confidence: model.ConfidenceHigh}
			groups[key] = g
		}
		if prev, ok := g.variants[obs.Raw]; ok {
			merged := *prev
			merged.Count += obs.Count
			if obs.FirstSeen.Before(merged.FirstSeen) {
				merged.FirstSeen = obs.FirstSeen
			}
			g.variants[obs.Raw] = &merged
		} else {
			o := obs
			g.variants[obs.Raw] = &o
		}
	}

	// Fuzzy pass over the residue: singleton groups try to join an anchor
	// group. Keys are walked in sorted order so the outcome does not depend
	// on map iteration.
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if r.maxEditDistance > 0 {
		for _, key := range keys {
			g := groups[key]
			if g == nil || len(g.variants) > 1 {
				continue
			}
			target := r.closestAnchor(groups, keys, key)
			if target == "" {
				continue
			}
			dst := groups[target]
			for raw, obs := range g.variants {
				dst.variants[raw] = obs
			}
			dst.confidence = model.ConfidenceLow
			delete(groups, key)
		}
	}

	identities := make([]model.KeywordIdentity, 0, len(groups))
	for _, g := range groups {
		if g == nil {
			continue
		}
		identities = append(identities, g.identity())
	}
	sort.Slice(identities, func(i, j int) bool { return identities[i].Canonical < identities[j].Canonical })

	m := &Mapping{
		Params: Params{
			MaxEditDistance: r.maxEditDistance,
			MaxLengthDelta:  r.maxLengthDelta,
		},
		Identities: identities,
	}
	m.index()
	m.Version = m.computeVersion()

	logger.Log.WithField("identities", len(identities)).
		WithField("variants", len(m.byVariant)).
		Debug("identity mapping resolved")
	return m
}

// closestAnchor finds the best merge target for a singleton key: the group
// with the smallest edit distance inside both bounds. Ties prefer the group
// with more variants, then the lexically smallest key, so the walk order of
// equal candidates cannot change the outcome. The length bound keeps
// unrelated short strings from merging.
func (r *Resolver) closestAnchor(groups map[string]*group, keys []string, key string) string {
	best := ""
	bestDist := r.maxEditDistance + 1
	bestSize := 0
	for _, other := range keys {
		g := groups[other]
		if g == nil || other == key {
			continue
		}
		if delta := len([]rune(other)) - len([]rune(key)); delta > r.maxLengthDelta || -delta > r.maxLengthDelta {
			continue
		}
		d := levenshtein.Distance(key, other, nil)
		if d > r.maxEditDistance {
			continue
		}
		if d < bestDist || (d == bestDist && len(g.variants) > bestSize) {
			best = other
			bestDist = d
			bestSize = len(g.variants)
		}
	}
	return best
}

// identity picks the canonical label: the most frequent raw form, ties
// broken by earliest first-seen date, then lexical order.
func (g *group) identity() model.KeywordIdentity {
	raws := make([]string, 0, len(g.variants))
	for raw := range g.variants {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	canonical := raws[0]
	firstSeen := g.variants[canonical].FirstSeen
	for _, raw := range raws {
		obs := g.variants[raw]
		if obs.FirstSeen.Before(firstSeen) {
			firstSeen = obs.FirstSeen
		}
		best := g.variants[canonical]
		switch {
		case obs.Count > best.Count:
			canonical = raw
		case obs.Count == best.Count && obs.FirstSeen.Before(best.FirstSeen):
			canonical = raw
		}
	}

	return model.KeywordIdentity{
		Canonical:  canonical,
		Variants:   raws,
		Confidence: g.confidence,
		FirstSeen:  firstSeen,
	}
}

// ObserveStore collects keyword observations from every stored snapshot.
func ObserveStore(s *store.Store) []Observation {
	byRaw := make(map[string]*Observation)
	for _, date := range s.Dates() {
		snaps, ok := s.Snapshots(date)
		if !ok {
			continue
		}
		for _, snap := range snaps {
			for _, e := range snap.Entries {
				obs, ok := byRaw[e.Title]
				if !ok {
					byRaw[e.Title] = &Observation{Raw: e.Title, Count: 1, FirstSeen: date}
					continue
				}
				obs.Count++
				if date.Before(obs.FirstSeen) {
					obs.FirstSeen = date
				}
			}
		}
	}

	out := make([]Observation, 0, len(byRaw))
	for _, obs := range byRaw {
		out = append(out, *obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out
}

// computeVersion digests the parameters and the full variant mapping, so two
// identical resolutions share a version tag.
func (m *Mapping) computeVersion() string {
	h := sha256.New()
	fmt.Fprintf(h, "ed=%d;ld=%d;", m.Params.MaxEditDistance, m.Params.MaxLengthDelta)
	for _, id := range m.Identities {
		fmt.Fprintf(h, "%s=%q;", id.Canonical, id.Variants)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
