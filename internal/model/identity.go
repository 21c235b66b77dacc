package model

// Confidence classifies how an identity merge was formed. Exact-match merges
// are high confidence; fuzzy (edit-distance) merges are low confidence and
// downstream consumers may filter on it.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// KeywordIdentity is the canonical form of one or more raw keyword variants.
// Canonical is the most frequent raw form in the group; Variants holds every
// raw string mapped to this identity.
type KeywordIdentity struct {
	Canonical  string     `json:"canonical"`
	Variants   []string   `json:"variants"`
	Confidence Confidence `json:"confidence"`
	FirstSeen  Date       `json:"first_seen"`
}

// AnnotatedEntry is an entry resolved to its identity plus an optional
// sentiment annotation. A nil Sentiment means the score is unavailable for
// this entry; aggregation excludes it rather than treating it as zero.
type AnnotatedEntry struct {
	Date      Date       `json:"date"`
	Entry     Entry      `json:"entry"`
	Identity  string     `json:"identity"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`
}

// Sentiment is one produced annotation. Score is in [-1, 1].
type Sentiment struct {
	Score float64        `json:"score"`
	Label SentimentLabel `json:"label"`
}

// SentimentLabel buckets a score for display.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// LabelForScore maps a score in [-1, 1] to a label. Scores within the neutral
// band around zero are neutral.
func LabelForScore(score float64) SentimentLabel {
	switch {
	case score > 0.2:
		return SentimentPositive
	case score < -0.2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
