package query

import (
	"sort"
	"strings"

	"github.com/asher407/hotwave/internal/model"
)

// Filter constrains a range scan. Zero values mean "no constraint". An
// explicit "uncategorized" entry in Categories matches entries without a
// category.
type Filter struct {
	Categories    []string // matches entry category; "uncategorized" matches ""
	MaxRank       int      // keep entries with rank <= MaxRank
	Identity      string   // canonical label; matches every raw variant
	TitleKeywords []string // keep entries whose title contains any keyword
	MinHeat       *float64
	MaxHeat       *float64
}

// Uncategorized is the category filter value matching entries that carry no
// category label.
const Uncategorized = "uncategorized"

// ScannedEntry is one scan result with its position in the corpus.
type ScannedEntry struct {
	Date  model.Date  `json:"date"`
	Clock string      `json:"clock,omitempty"`
	Entry model.Entry `json:"entry"`
}

// EntryScanner walks scan results lazily in (date, rank) order, in the
// bufio.Scanner style. Reset rewinds it; re-iterating yields the same
// entries.
type EntryScanner struct {
	engine  *Engine
	dates   []model.Date
	filter  Filter
	matches func(model.Entry) bool

	dateIdx int
	pending []ScannedEntry
	current ScannedEntry
}

// Scan returns a restartable scanner over [from, to]. Dates are resolved
// against the store up front; entries are loaded one date partition at a
// time.
func (e *Engine) Scan(from, to model.Date, filter Filter) *EntryScanner {
	return &EntryScanner{
		engine:  e,
		dates:   e.store.ListDates(from, to),
		filter:  filter,
		matches: e.predicate(filter),
	}
}

// Next advances to the next matching entry. It returns false when the scan
// is exhausted.
func (s *EntryScanner) Next() bool {
	for {
		if len(s.pending) > 0 {
			s.current = s.pending[0]
			s.pending = s.pending[1:]
			return true
		}
		if s.dateIdx >= len(s.dates) {
			return false
		}
		s.loadDate(s.dates[s.dateIdx])
		s.dateIdx++
	}
}

// Entry returns the entry produced by the last successful Next.
func (s *EntryScanner) Entry() ScannedEntry { return s.current }

// Reset rewinds the scanner to the start of the range.
func (s *EntryScanner) Reset() {
	s.dateIdx = 0
	s.pending = nil
	s.current = ScannedEntry{}
}

// Collect drains the scanner into a slice.
func (s *EntryScanner) Collect() []ScannedEntry {
	var out []ScannedEntry
	for s.Next() {
		out = append(out, s.Entry())
	}
	return out
}

// loadDate stages every matching entry of one date, ordered by (clock, rank).
func (s *EntryScanner) loadDate(date model.Date) {
	snaps, ok := s.engine.store.Snapshots(date)
	if !ok {
		return
	}
	for _, snap := range snaps {
		entries := make([]model.Entry, len(snap.Entries))
		copy(entries, snap.Entries)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })
		for _, entry := range entries {
			if s.matches(entry) {
				s.pending = append(s.pending, ScannedEntry{Date: date, Clock: snap.Clock, Entry: entry})
			}
		}
	}
}

// predicate compiles a filter against the current identity mapping.
func (e *Engine) predicate(f Filter) func(model.Entry) bool {
	categories := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		categories[c] = true
	}

	return func(entry model.Entry) bool {
		if len(categories) > 0 {
			cat := entry.Category
			if cat == "" {
				cat = Uncategorized
			}
			if !categories[cat] {
				return false
			}
		}
		if f.MaxRank > 0 && entry.Rank > f.MaxRank {
			return false
		}
		if f.Identity != "" && e.mapping.Canonical(entry.Title) != f.Identity {
			return false
		}
		if f.MinHeat != nil && (entry.Heat == nil || *entry.Heat < *f.MinHeat) {
			return false
		}
		if f.MaxHeat != nil && (entry.Heat == nil || *entry.Heat > *f.MaxHeat) {
			return false
		}
		if len(f.TitleKeywords) > 0 {
			title := strings.ToLower(entry.Title)
			found := false
			for _, kw := range f.TitleKeywords {
				if strings.Contains(title, strings.ToLower(kw)) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
}
