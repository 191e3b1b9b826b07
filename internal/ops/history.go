package ops

import (
	"context"

	"github.com/hpungsan/wxdash/internal/db"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Limit int `json:"limit"` // default: Env.HistoryLimit or 10, max: 100
}

// HistoryRecord is one stored lookup.
type HistoryRecord struct {
	ID          string  `json:"id"`
	District    string  `json:"district"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	SearchedAt  int64   `json:"searched_at"`
}

// HistoryOutput contains recent lookups, most recent first.
type HistoryOutput struct {
	Items []HistoryRecord `json:"items"`
}

// History returns the most recent lookups.
func History(ctx context.Context, env *Env, input HistoryInput) (*HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = env.HistoryLimit
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := db.ListHistory(ctx, env.DB, limit)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryRecord, len(rows))
	for i, r := range rows {
		items[i] = HistoryRecord(r)
	}
	return &HistoryOutput{Items: items}, nil
}
