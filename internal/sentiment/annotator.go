package sentiment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/asher407/hotwave/internal/cache"
	"github.com/asher407/hotwave/internal/logger"
	"github.com/asher407/hotwave/internal/model"
	"github.com/asher407/hotwave/internal/worker"
)

// Request is one entry to annotate.
type Request struct {
	Date     model.Date
	Entry    model.Entry
	Identity string
}

// Annotator runs the scorer over batches of entries with caching, bounded
// concurrency, a per-call timeout, and per-entry failure isolation: one
// failing call yields an unavailable annotation for that entry and never
// aborts its siblings.
type Annotator struct {
	scorer      Scorer
	cache       cache.Cache
	limiter     *worker.Limiter
	workers     int
	callTimeout time.Duration
	cacheTTL    time.Duration
}

// NewAnnotator wires a scorer to its cache and batch policy. A nil scorer is
// legal: every annotation comes back unavailable.
func NewAnnotator(scorer Scorer, c cache.Cache, cfg model.SentimentConfig) *Annotator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Annotator{
		scorer:      scorer,
		cache:       c,
		limiter:     worker.NewLimiter(rps, workers),
		workers:     workers,
		callTimeout: callTimeout,
		cacheTTL:    cfg.CacheTTL,
	}
}

// Annotate scores one identity in its context text. It returns nil (not an
// error) when the score is unavailable: scorer disabled, call failed, or
// call timed out.
func (a *Annotator) Annotate(ctx context.Context, identity, contextText string) *model.Sentiment {
	if a.scorer == nil {
		return nil
	}

	key := cache.AnnotationKey(a.scorer.ModelVersion(), identity, contextText)
	if a.cache != nil {
		if raw, found := a.cache.Get(key); found {
			var s model.Sentiment
			if err := json.Unmarshal(raw, &s); err == nil {
				return &s
			}
		}
	}

	if err := a.limiter.Wait(ctx, a.scorer.ModelVersion()); err != nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	score, err := a.scorer.Score(callCtx, contextText)
	if err != nil {
		logger.Log.WithField("identity", identity).WithError(err).
			Debug("sentiment score unavailable")
		return nil
	}

	s := &model.Sentiment{Score: score, Label: model.LabelForScore(score)}
	if a.cache != nil {
		if raw, err := json.Marshal(s); err == nil {
			_ = a.cache.Set(key, raw, a.cacheTTL)
		}
	}
	return s
}

// scoreJob annotates one request on the pool.
type scoreJob struct {
	annotator *Annotator
	index     int
	req       Request
}

// scoreResult carries the annotation back with its batch position.
type scoreResult struct {
	index     int
	sentiment *model.Sentiment
}

func (r *scoreResult) GetError() error { return nil }

func (j *scoreJob) Execute(ctx context.Context) worker.Result {
	return &scoreResult{
		index:     j.index,
		sentiment: j.annotator.Annotate(ctx, j.req.Identity, j.req.Entry.Title),
	}
}

// AnnotateBatch annotates a batch in parallel, bounded by the worker limit.
// The result slice is positionally aligned with the requests; entries whose
// call failed carry a nil Sentiment.
func (a *Annotator) AnnotateBatch(ctx context.Context, reqs []Request) []model.AnnotatedEntry {
	out := make([]model.AnnotatedEntry, len(reqs))
	for i, req := range reqs {
		out[i] = model.AnnotatedEntry{Date: req.Date, Entry: req.Entry, Identity: req.Identity}
	}
	if len(reqs) == 0 || a.scorer == nil {
		return out
	}

	pool := worker.NewPool(a.workers)
	pool.Start()
	go func() {
		for i := range reqs {
			pool.Submit(&scoreJob{annotator: a, index: i, req: reqs[i]})
		}
		pool.Close()
	}()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, res := range pool.Wait() {
		sr := res.(*scoreResult)
		out[sr.index].Sentiment = sr.sentiment
	}
	close(done)
	return out
}
