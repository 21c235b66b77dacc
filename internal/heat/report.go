package heat

import (
	"time"

	"github.com/asher407/hotwave/internal/model"
)

// AnnualReport is the year-end rollup: the top-K records by composite score,
// additionally grouped by category where one is available. Identities
// without a category group under "uncategorized".
type AnnualReport struct {
	Year        string                             `json:"year"`
	GeneratedAt time.Time                          `json:"generated_at"`
	TopK        []model.HeatIndexRecord            `json:"top_k"`
	ByCategory  map[string][]model.HeatIndexRecord `json:"by_category"`
	Identities  int                                `json:"identities"`
}

// Annual computes the report for one year.
func (e *Engine) Annual(year string, annotations []model.AnnotatedEntry, topK int) (*AnnualReport, error) {
	period, err := model.ParsePeriod(year)
	if err != nil {
		return nil, err
	}

	records := e.Compute(period, annotations)

	byCategory := make(map[string][]model.HeatIndexRecord)
	for _, rec := range records {
		cat := rec.Category
		if cat == "" {
			cat = "uncategorized"
		}
		byCategory[cat] = append(byCategory[cat], rec)
	}
	if topK > 0 {
		for cat, recs := range byCategory {
			if len(recs) > topK {
				byCategory[cat] = recs[:topK]
			}
		}
	}

	top := records
	if topK > 0 && len(top) > topK {
		top = top[:topK]
	}

	return &AnnualReport{
		Year:        year,
		GeneratedAt: time.Now().UTC(),
		TopK:        top,
		ByCategory:  byCategory,
		Identities:  len(records),
	}, nil
}
