// Package query is the read interface over the snapshot store: point
// lookups, range scans, gap-aware time series, and the identity index the
// aggregation layers run on. All reads are safe to run concurrently with
// each other and with appends to other date partitions.
package query

import (
	"fmt"
	"sort"
	"sync"

	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/resolve"
	"github.com/asher407/hotwave/internal/store"
)

// Engine serves reads over a store plus the current identity mapping.
type Engine struct {
	store   *store.Store
	mapping *resolve.Mapping

	mu    sync.RWMutex
	index map[string][]Location
}

// Location is one appearance of an identity in the corpus.
type Location struct {
	Date  model.Date `json:"date"`
	Clock string     `json:"clock,omitempty"`
	Rank  int        `json:"rank"`
}

// NewEngine creates an engine and builds its index.
func NewEngine(s *store.Store, mapping *resolve.Mapping) *Engine {
	e := &Engine{store: s, mapping: mapping}
	e.RebuildIndex()
	return e
}

// GetSnapshot returns the snapshot of a date: the exact capture when
// timeHint ("15:04") is given, else the latest of the date. A missing date
// or time is model.ErrNotFound, a first-class result, never a silent empty
// snapshot.
func (e *Engine) GetSnapshot(date model.Date, timeHint string) (model.Snapshot, error) {
	snaps, ok := e.store.Snapshots(date)
	if !ok {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", date, model.ErrNotFound)
	}

	if timeHint == "" {
		return snaps[len(snaps)-1], nil // snapshots are clock-ordered
	}
	for _, snap := range snaps {
		if snap.Clock == timeHint {
			return snap, nil
		}
	}
	return model.Snapshot{}, fmt.Errorf("snapshot %s %s: %w", date, timeHint, model.ErrNotFound)
}

// ListDates exposes the store's gap-aware date listing.
func (e *Engine) ListDates(from, to model.Date) []model.Date {
	return e.store.ListDates(from, to)
}

// Snapshots returns every snapshot of a date in capture order. The second
// result is false when the date holds no data.
func (e *Engine) Snapshots(date model.Date) ([]model.Snapshot, bool) {
	return e.store.Snapshots(date)
}

// Mapping returns the identity mapping the engine was built with.
func (e *Engine) Mapping() *resolve.Mapping {
	return e.mapping
}

// RebuildIndex recomputes the identity index from scratch. The index is a
// pure function of the store and the current mapping, so discarding and
// recomputing it is always safe.
func (e *Engine) RebuildIndex() {
	idx := make(map[string][]Location)
	for _, date := range e.store.Dates() {
		snaps, ok := e.store.Snapshots(date)
		if !ok {
			continue
		}
		for _, snap := range snaps {
			for _, entry := range snap.Entries {
				canonical := e.mapping.Canonical(entry.Title)
				idx[canonical] = append(idx[canonical], Location{
					Date:  date,
					Clock: snap.Clock,
					Rank:  entry.Rank,
				})
			}
		}
	}

	for id := range idx {
		locs := idx[id]
		sort.Slice(locs, func(i, j int) bool {
			if locs[i].Date != locs[j].Date {
				return locs[i].Date < locs[j].Date
			}
			if locs[i].Clock != locs[j].Clock {
				return locs[i].Clock < locs[j].Clock
			}
			return locs[i].Rank < locs[j].Rank
		})
	}

	e.mu.Lock()
	e.index = idx
	e.mu.Unlock()
}

// Locations returns every indexed appearance of an identity, ordered by
// (date, clock, rank).
func (e *Engine) Locations(canonical string) []Location {
	e.mu.RLock()
	defer e.mu.RUnlock()
	locs := e.index[canonical]
	out := make([]Location, len(locs))
	copy(out, locs)
	return out
}

// Identities returns every indexed canonical label, unordered.
func (e *Engine) Identities() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.index))
	for id := range e.index {
		out = append(out, id)
	}
	return out
}
