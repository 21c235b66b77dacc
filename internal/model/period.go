package model

import (
	"fmt"
	"time"
)

// Period is a day, month, or year bucket identified by its label
// ("2025-03-01", "2025-03", "2025").
type Period struct {
	Label string `json:"label"`
	Start Date   `json:"start"`
	End   Date   `json:"end"` // inclusive
}

// ParsePeriod accepts a day, month, or year label.
func ParsePeriod(label string) (Period, error) {
	switch len(label) {
	case 10: // YYYY-MM-DD
		d, err := ParseDate(label)
		if err != nil {
			return Period{}, err
		}
		return Period{Label: label, Start: d, End: d}, nil
	case 7: // YYYY-MM
		t, err := time.Parse("2006-01", label)
		if err != nil {
			return Period{}, fmt.Errorf("parse period %q: %w", label, err)
		}
		start := Date(t.Format("2006-01-02"))
		end := Date(t.AddDate(0, 1, -1).Format("2006-01-02"))
		return Period{Label: label, Start: start, End: end}, nil
	case 4: // YYYY
		t, err := time.Parse("2006", label)
		if err != nil {
			return Period{}, fmt.Errorf("parse period %q: %w", label, err)
		}
		start := Date(t.Format("2006-01-02"))
		end := Date(t.AddDate(1, 0, -1).Format("2006-01-02"))
		return Period{Label: label, Start: start, End: end}, nil
	default:
		return Period{}, fmt.Errorf("parse period %q: want YYYY, YYYY-MM, or YYYY-MM-DD", label)
	}
}

// Days returns the period length in calendar days.
func (p Period) Days() int {
	return int(p.End.Time().Sub(p.Start.Time()).Hours()/24) + 1
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}
