package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Date is a calendar day in "YYYY-MM-DD" form. ISO ordering means plain
// string comparison orders dates correctly.
type Date string

// ParseDate validates and returns a Date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date(s), nil
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	t, _ := time.Parse("2006-01-02", string(d))
	return t
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return Date(d.Time().AddDate(0, 0, 1).Format("2006-01-02"))
}

// Month returns the "YYYY-MM" prefix, used for partition directories.
func (d Date) Month() string {
	if len(d) < 7 {
		return string(d)
	}
	return string(d[:7])
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d > other }

// Source tags how a snapshot was captured.
type Source string

const (
	SourceLive       Source = "live"              // captured from the live ranking
	SourceArchive    Source = "static-archive"    // backfilled from a static archive page
	SourceHistorical Source = "historical-lookup" // backfilled from a historical lookup service
)

// Entry is one ranked item inside a snapshot. Heat is the platform-reported
// popularity figure and may be absent; Category may be absent and filled later
// by the external classifier. An empty Category means "uncategorized".
type Entry struct {
	Rank     int      `json:"rank"`
	Title    string   `json:"title"`
	Heat     *float64 `json:"heat,omitempty"`
	Category string   `json:"category,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Snapshot is one capture event: an ordered hot-search list at a point in
// time. Clock is the optional capture time of day in "15:04" form; snapshots
// without a clock are treated as the single snapshot of their date.
type Snapshot struct {
	Date    Date    `json:"date"`
	Clock   string  `json:"clock,omitempty"`
	Source  Source  `json:"source"`
	Entries []Entry `json:"data"`
}

// CaptureTime combines date and optional clock into a timestamp (UTC).
func (s Snapshot) CaptureTime() time.Time {
	t := s.Date.Time()
	if s.Clock != "" {
		if c, err := time.Parse("15:04", s.Clock); err == nil {
			t = t.Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute)
		}
	}
	return t
}

// ContentKey is the identity key for idempotent appends: a digest of
// (capture time, source, entry multiset). Entry order does not matter.
func (s Snapshot) ContentKey() string {
	lines := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		heat := ""
		if e.Heat != nil {
			heat = fmt.Sprintf("%g", *e.Heat)
		}
		lines = append(lines, fmt.Sprintf("%d\x1f%s\x1f%s\x1f%s", e.Rank, e.Title, heat, e.URL))
	}
	sort.Strings(lines)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x1e%s\x1e%s\x1e", s.Date, s.Clock, s.Source)
	h.Write([]byte(strings.Join(lines, "\x1e")))
	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks the structural invariant: rank values must be unique
// integers forming a contiguous range starting at 1.
func (s Snapshot) Validate() error {
	if _, err := ParseDate(string(s.Date)); err != nil {
		return &MalformedSnapshotError{Date: s.Date, Reason: "invalid date"}
	}

	seen := make(map[int]bool, len(s.Entries))
	var bad []Entry
	for _, e := range s.Entries {
		if e.Rank < 1 || e.Rank > len(s.Entries) || seen[e.Rank] {
			bad = append(bad, e)
			continue
		}
		seen[e.Rank] = true
	}
	if len(bad) > 0 {
		return &MalformedSnapshotError{
			Date:    s.Date,
			Reason:  fmt.Sprintf("ranks must be a contiguous 1..%d range", len(s.Entries)),
			Entries: bad,
		}
	}
	return nil
}
