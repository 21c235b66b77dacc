package heat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/query"
	"github.com/asher407/hotwave/internal/resolve"
	"github.com/asher407/hotwave/internal/store"
)

func buildEngine(t *testing.T, weights model.Weights, snaps ...model.Snapshot) *Engine {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	for _, snap := range snaps {
		require.NoError(t, s.Append(snap))
	}
	r := resolve.NewResolver(model.ResolverConfig{MaxEditDistance: 1, MaxLengthDelta: 2})
	q := query.NewEngine(s, r.Resolve(resolve.ObserveStore(s)))

	e, err := NewEngine(q, model.HeatConfig{Weights: weights, TopK: 50})
	require.NoError(t, err)
	return e
}

func daySnap(date model.Date, entries ...model.Entry) model.Snapshot {
	return model.Snapshot{Date: date, Source: model.SourceLive, Entries: entries}
}

func mustPeriod(t *testing.T, label string) model.Period {
	t.Helper()
	p, err := model.ParsePeriod(label)
	require.NoError(t, err)
	return p
}

// Weighting that isolates one component at a time keeps the arithmetic
// checkable by hand.
func only(component string) model.Weights {
	w := model.Weights{}
	switch component {
	case "frequency":
		w.Frequency = 1
	case "rank":
		w.Rank = 1
	case "duration":
		w.Duration = 1
	case "sentiment":
		w.Sentiment = 1
	}
	return w
}

func TestEngine_Compute_FrequencyUsesCollectedSnapshots(t *testing.T) {
	// Three snapshots exist in a 31-day month. Frequency is relative to the
	// three, not to a zero-filled month.
	e := buildEngine(t, only("frequency"),
		daySnap("2025-03-01", model.Entry{Rank: 1, Title: "steady"}),
		daySnap("2025-03-10", model.Entry{Rank: 1, Title: "steady"}, model.Entry{Rank: 2, Title: "once"}),
		daySnap("2025-03-20", model.Entry{Rank: 1, Title: "steady"}),
	)

	records := e.Compute(mustPeriod(t, "2025-03"), nil)
	require.Len(t, records, 2)

	assert.Equal(t, "steady", records[0].Identity)
	assert.InDelta(t, 1.0, records[0].Components.Frequency, 1e-9)
	assert.Equal(t, 3, records[0].Appearances)

	assert.Equal(t, "once", records[1].Identity)
	assert.InDelta(t, 1.0/3.0, records[1].Components.Frequency, 1e-9)
}

func TestEngine_Compute_RankComponent(t *testing.T) {
	// climber places 3, 1, 2 across three full top-5 lists; tail shows up
	// once at rank 5. Every other slot is filled so no list has rank holes,
	// with the fillers placed so none of them out-means climber.
	e := buildEngine(t, only("rank"),
		daySnap("2025-03-01",
			model.Entry{Rank: 1, Title: "alpha"},
			model.Entry{Rank: 2, Title: "bravo"},
			model.Entry{Rank: 3, Title: "climber"},
			model.Entry{Rank: 4, Title: "delta"},
			model.Entry{Rank: 5, Title: "tail"},
		),
		daySnap("2025-03-02",
			model.Entry{Rank: 1, Title: "climber"},
			model.Entry{Rank: 2, Title: "delta"},
			model.Entry{Rank: 3, Title: "echo"},
			model.Entry{Rank: 4, Title: "alpha"},
			model.Entry{Rank: 5, Title: "bravo"},
		),
		daySnap("2025-03-03",
			model.Entry{Rank: 1, Title: "bravo"},
			model.Entry{Rank: 2, Title: "climber"},
			model.Entry{Rank: 3, Title: "echo"},
			model.Entry{Rank: 4, Title: "alpha"},
			model.Entry{Rank: 5, Title: "delta"},
		),
	)

	records := e.Compute(mustPeriod(t, "2025-03"), nil)
	require.Len(t, records, 6)

	// climber mean(1/rank) = (1/3 + 1 + 1/2) / 3, the period maximum.
	assert.Equal(t, "climber", records[0].Identity)
	assert.InDelta(t, 1.0, records[0].Components.Rank, 1e-9)

	// tail mean(1/rank) = 1/5, normalized against the climber's mean.
	wantTail := (1.0 / 5.0) / ((1.0/3.0 + 1.0 + 1.0/2.0) / 3.0)
	assert.Equal(t, "tail", records[5].Identity)
	assert.InDelta(t, wantTail, records[5].Components.Rank, 1e-9)
	assert.Less(t, records[5].Components.Rank, records[0].Components.Rank)
}

func TestEngine_Compute_DurationComponent(t *testing.T) {
	e := buildEngine(t, only("duration"),
		daySnap("2025-03-01", model.Entry{Rank: 1, Title: "lasting"}, model.Entry{Rank: 2, Title: "flash"}),
		daySnap("2025-03-31", model.Entry{Rank: 1, Title: "lasting"}),
	)

	records := e.Compute(mustPeriod(t, "2025-03"), nil)
	require.Len(t, records, 2)

	// lasting spans the whole period, flash a single capture.
	assert.Equal(t, "lasting", records[0].Identity)
	assert.InDelta(t, 1.0, records[0].Components.Duration, 1e-9)
	assert.Equal(t, "flash", records[1].Identity)
	assert.InDelta(t, 0.0, records[1].Components.Duration, 1e-9)
}

func TestEngine_Compute_SentimentMeanSkipsUnavailable(t *testing.T) {
	e := buildEngine(t, only("sentiment"),
		daySnap("2025-03-01", model.Entry{Rank: 1, Title: "topic"}),
		daySnap("2025-03-02", model.Entry{Rank: 1, Title: "topic"}),
	)

	annotations := []model.AnnotatedEntry{
		{Date: "2025-03-01", Entry: model.Entry{Rank: 1, Title: "topic"}, Identity: "topic",
			Sentiment: &model.Sentiment{Score: -0.6, Label: model.SentimentNegative}},
		// Unavailable score: excluded from the mean, not a zero.
		{Date: "2025-03-02", Entry: model.Entry{Rank: 1, Title: "topic"}, Identity: "topic"},
	}

	records := e.Compute(mustPeriod(t, "2025-03"), annotations)
	require.Len(t, records, 1)
	// Intensity uses the absolute score.
	assert.InDelta(t, 0.6, records[0].Components.Sentiment, 1e-9)
}

func TestEngine_Compute_DeterministicAcrossAppendOrder(t *testing.T) {
	snaps := []model.Snapshot{
		daySnap("2025-03-01", model.Entry{Rank: 1, Title: "apple"}, model.Entry{Rank: 2, Title: "banana"}),
		daySnap("2025-03-02", model.Entry{Rank: 1, Title: "banana"}, model.Entry{Rank: 2, Title: "cherry"}),
		daySnap("2025-03-03", model.Entry{Rank: 1, Title: "cherry"}, model.Entry{Rank: 2, Title: "apple"}),
	}
	reversed := []model.Snapshot{snaps[2], snaps[1], snaps[0]}

	e1 := buildEngine(t, model.DefaultWeights(), snaps...)
	e2 := buildEngine(t, model.DefaultWeights(), reversed...)

	r1 := e1.Compute(mustPeriod(t, "2025-03"), nil)
	r2 := e2.Compute(mustPeriod(t, "2025-03"), nil)
	assert.Equal(t, r1, r2)
}

func TestEngine_Compute_TieBreakIsDeterministic(t *testing.T) {
	// Two identities with identical appearances and rank collapse to the
	// lexical tie-break.
	e := buildEngine(t, model.DefaultWeights(),
		daySnap("2025-03-01", model.Entry{Rank: 1, Title: "zz"}, model.Entry{Rank: 2, Title: "aa"}),
		daySnap("2025-03-02", model.Entry{Rank: 1, Title: "aa"}, model.Entry{Rank: 2, Title: "zz"}),
	)

	records := e.Compute(mustPeriod(t, "2025-03"), nil)
	require.Len(t, records, 2)
	assert.Equal(t, "aa", records[0].Identity)
	assert.Equal(t, "zz", records[1].Identity)
}

func TestEngine_Compute_EmptyPeriod(t *testing.T) {
	e := buildEngine(t, model.DefaultWeights(),
		daySnap("2025-03-01", model.Entry{Rank: 1, Title: "a"}),
	)
	assert.Empty(t, e.Compute(mustPeriod(t, "2024"), nil))
}

func TestEngine_GetHeatIndex_TopK(t *testing.T) {
	e := buildEngine(t, model.DefaultWeights(),
		daySnap("2025-03-01",
			model.Entry{Rank: 1, Title: "apple"},
			model.Entry{Rank: 2, Title: "banana"},
			model.Entry{Rank: 3, Title: "cherry"},
		),
	)

	records := e.GetHeatIndex(mustPeriod(t, "2025-03"), nil, 2)
	require.Len(t, records, 2)
	assert.Equal(t, "apple", records[0].Identity)
}

func TestNewEngine_RejectsBadWeights(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	r := resolve.NewResolver(model.ResolverConfig{})
	q := query.NewEngine(s, r.Resolve(nil))

	_, err = NewEngine(q, model.HeatConfig{Weights: model.Weights{Frequency: -1}})
	assert.Error(t, err)
}

func TestEngine_Annual_GroupsByCategory(t *testing.T) {
	e := buildEngine(t, model.DefaultWeights(),
		daySnap("2025-03-01",
			model.Entry{Rank: 1, Title: "match", Category: "体育"},
			model.Entry{Rank: 2, Title: "launch", Category: "科技"},
			model.Entry{Rank: 3, Title: "unlabeled"},
		),
		daySnap("2025-06-01",
			model.Entry{Rank: 1, Title: "match", Category: "体育"},
		),
	)

	report, err := e.Annual("2025", nil, 10)
	require.NoError(t, err)

	assert.Equal(t, "2025", report.Year)
	require.NotZero(t, report.Identities)
	require.NotEmpty(t, report.TopK)
	assert.Equal(t, "match", report.TopK[0].Identity)

	require.Contains(t, report.ByCategory, "体育")
	require.Contains(t, report.ByCategory, "科技")
	require.Contains(t, report.ByCategory, "uncategorized")
	assert.Equal(t, "match", report.ByCategory["体育"][0].Identity)
}
