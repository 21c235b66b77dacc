package query

import (
	"fmt"

	"github.com/asher407/hotwave/internal/model"
)

// GetTimeSeries builds the observation history of one identity over
// [from, to]. All raw variants of the identity are resolved; duplicate
// observations inside one bucket are merged keeping the best (lowest) rank.
// Dates in the range with no stored data at all are reported in Gaps, not
// interpolated or zero-filled; a stored date that simply lacks the identity
// yields no point and no gap. Annotations are optional; where one matches the
// chosen observation its score is carried on the point, otherwise Sentiment
// stays nil.
func (e *Engine) GetTimeSeries(canonical string, granularity model.Granularity, from, to model.Date, annotations []model.AnnotatedEntry) (model.TimeSeries, error) {
	if _, ok := e.mapping.Identity(canonical); !ok {
		if len(e.Locations(canonical)) == 0 {
			return model.TimeSeries{}, fmt.Errorf("identity %q: %w", canonical, model.ErrNotFound)
		}
	}

	series := model.TimeSeries{Identity: canonical, Granularity: granularity}

	// Best observation per bucket.
	type best struct {
		date model.Date
		rank int
		heat *float64
	}
	byBucket := make(map[string]*best)
	bucketOf := func(d model.Date) string {
		if granularity == model.GranularityMonthly {
			return d.Month()
		}
		return string(d)
	}

	covered := make(map[model.Date]bool)
	for _, date := range e.store.ListDates(from, to) {
		covered[date] = true
	}

	type observation struct {
		date model.Date
		rank int
	}
	sentiments := make(map[observation]float64)
	for _, a := range annotations {
		if a.Identity != canonical || a.Sentiment == nil {
			continue
		}
		key := observation{a.Date, a.Entry.Rank}
		if _, ok := sentiments[key]; !ok {
			sentiments[key] = a.Sentiment.Score
		}
	}

	for _, loc := range e.Locations(canonical) {
		if loc.Date.Before(from) || loc.Date.After(to) {
			continue
		}
		bucket := bucketOf(loc.Date)
		b, ok := byBucket[bucket]
		if !ok {
			byBucket[bucket] = &best{date: loc.Date, rank: loc.Rank, heat: e.heatAt(loc)}
			continue
		}
		if loc.Rank < b.rank {
			b.rank = loc.Rank
			b.date = loc.Date
			b.heat = e.heatAt(loc)
		}
	}

	// Walk the range in order so points come out strictly increasing with at
	// most one per bucket, and gaps are explicit.
	seenBucket := make(map[string]bool)
	for d := from; !d.After(to); d = d.Next() {
		if !covered[d] {
			if granularity == model.GranularityDaily {
				series.Gaps = append(series.Gaps, d)
			}
			continue
		}
		bucket := bucketOf(d)
		if seenBucket[bucket] {
			continue
		}
		seenBucket[bucket] = true
		if b, ok := byBucket[bucket]; ok {
			point := model.TimeSeriesPoint{
				Timestamp: b.date.Time(),
				Date:      b.date,
				Rank:      b.rank,
				Heat:      b.heat,
			}
			if score, ok := sentiments[observation{b.date, b.rank}]; ok {
				point.Sentiment = &score
			}
			series.Points = append(series.Points, point)
		}
	}

	if granularity == model.GranularityMonthly {
		series.Gaps = monthGaps(from, to, covered)
	}

	return series, nil
}

// heatAt looks up the reported heat value behind a location.
func (e *Engine) heatAt(loc Location) *float64 {
	snaps, ok := e.store.Snapshots(loc.Date)
	if !ok {
		return nil
	}
	for _, snap := range snaps {
		if snap.Clock != loc.Clock {
			continue
		}
		for _, entry := range snap.Entries {
			if entry.Rank == loc.Rank {
				return entry.Heat
			}
		}
	}
	return nil
}

// monthGaps lists months inside the range with no stored data at all.
func monthGaps(from, to model.Date, covered map[model.Date]bool) []model.Date {
	monthHasData := make(map[string]bool)
	months := []string{}
	seen := make(map[string]bool)
	for d := from; !d.After(to); d = d.Next() {
		m := d.Month()
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
		if covered[d] {
			monthHasData[m] = true
		}
	}

	var gaps []model.Date
	for _, m := range months {
		if !monthHasData[m] {
			gaps = append(gaps, model.Date(m+"-01"))
		}
	}
	return gaps
}
