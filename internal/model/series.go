package model

import "time"

// Granularity selects the bucketing of a time series.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
)

// TimeSeriesPoint is one observation of a keyword identity. Heat and
// Sentiment are optional; Rank is the best (lowest) rank observed in the
// bucket when duplicates were merged.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Date      Date      `json:"date"`
	Rank      int       `json:"rank"`
	Heat      *float64  `json:"heat,omitempty"`
	Sentiment *float64  `json:"sentiment,omitempty"`
}

// TimeSeries is the ordered observation history of one keyword identity.
// Points are strictly increasing in timestamp with at most one point per
// timestamp. Gaps lists dates inside the requested range for which the store
// holds no data at all; they are reported, never interpolated or zero-filled.
type TimeSeries struct {
	Identity    string            `json:"identity"`
	Granularity Granularity       `json:"granularity"`
	Points      []TimeSeriesPoint `json:"points"`
	Gaps        []Date            `json:"gaps,omitempty"`
}
