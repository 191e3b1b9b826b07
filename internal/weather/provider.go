package weather

import (
	"context"

	"github.com/hpungsan/wxdash/internal/district"
)

// Provider fetches a snapshot for a directory entry.
type Provider interface {
	Snapshot(ctx context.Context, d district.District) (*Snapshot, error)
	Name() string
}
