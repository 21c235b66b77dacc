// Package store is the append-only, date-partitioned persistence layer for
// captured hot-search snapshots. Snapshots are immutable once stored; appends
// to the same date partition are serialized while different dates proceed
// independently.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/asher407/hotwave/internal/logger"
	"github.com/asher407/hotwave/internal/model"
)

// Store holds one partition per calendar date, each backed by a JSON file
// under dir/YYYY-MM/YYYY-MM-DD.json.
type Store struct {
	dir string

	mu         sync.RWMutex
	partitions map[model.Date]*partition
}

// partition guards one date. Readers take the read lock; the append path
// takes the write lock and replaces the snapshot slice wholesale, so a racing
// reader observes either the pre-append or the fully-applied state.
type partition struct {
	mu    sync.RWMutex
	snaps []model.Snapshot
	keys  map[string]bool // content keys of stored snapshots
}

// Open loads every existing partition file under dir. A missing directory is
// an empty store, not an error.
func Open(dir string) (*Store, error) {
	s := &Store{
		dir:        dir,
		partitions: make(map[model.Date]*partition),
	}
	if err := s.loadAll(); err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	return s, nil
}

// Append validates and stores one snapshot. It fails with
// *model.MalformedSnapshotError when the rank-contiguity invariant is
// violated, leaving the store unchanged. Re-appending a snapshot with the
// same (capture time, source, entry multiset) identity returns
// model.ErrAlreadyPresent without inserting a copy.
func (s *Store) Append(snap model.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	p := s.partition(snap.Date)

	p.mu.Lock()
	defer p.mu.Unlock()

	key := snap.ContentKey()
	if p.keys[key] {
		return model.ErrAlreadyPresent
	}

	next := make([]model.Snapshot, len(p.snaps), len(p.snaps)+1)
	copy(next, p.snaps)
	next = append(next, snap)
	sort.SliceStable(next, func(i, j int) bool { return next[i].Clock < next[j].Clock })

	if err := s.writePartition(snap.Date, next); err != nil {
		return fmt.Errorf("persist partition %s: %w", snap.Date, err)
	}

	p.snaps = next
	p.keys[key] = true

	logger.Log.WithField("date", snap.Date).WithField("entries", len(snap.Entries)).
		Debug("snapshot appended")
	return nil
}

// Snapshots returns the stored snapshots of one date, ordered by capture
// clock. The second result is false when the date holds no data at all,
// which is distinct from a stored snapshot with zero entries.
func (s *Store) Snapshots(date model.Date) ([]model.Snapshot, bool) {
	s.mu.RLock()
	p, ok := s.partitions[date]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.snaps) == 0 {
		return nil, false
	}
	out := make([]model.Snapshot, len(p.snaps))
	copy(out, p.snaps)
	return out, true
}

// ListDates returns, in order, every date inside [from, to] that has at
// least one stored snapshot. An empty bound is unbounded on that side.
func (s *Store) ListDates(from, to model.Date) []model.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dates []model.Date
	for d, p := range s.partitions {
		if (from != "" && d.Before(from)) || (to != "" && d.After(to)) {
			continue
		}
		p.mu.RLock()
		has := len(p.snaps) > 0
		p.mu.RUnlock()
		if has {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Dates returns every stored date in order.
func (s *Store) Dates() []model.Date {
	return s.ListDates("", "")
}

// partition returns the partition for date, creating it if needed.
func (s *Store) partition(date model.Date) *partition {
	s.mu.RLock()
	p, ok := s.partitions[date]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.partitions[date]; ok {
		return p
	}
	p = &partition{keys: make(map[string]bool)}
	s.partitions[date] = p
	return p
}
