package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/hpungsan/wxdash/internal/db"
	"github.com/hpungsan/wxdash/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays *int // optional, only purge lookups older than now - N days
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes search history, optionally keeping recent lookups.
func Purge(ctx context.Context, env *Env, input PurgeInput) (*PurgeOutput, error) {
	var before int64
	if input.OlderThanDays != nil {
		if *input.OlderThanDays < 0 {
			return nil, errors.NewInvalidRequest("older_than_days must be non-negative")
		}
		before = env.now().Add(-time.Duration(*input.OlderThanDays) * 24 * time.Hour).Unix()
	}

	count, err := db.PurgeHistory(ctx, env.DB, before)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, olderThanDays *int) string {
	if count == 0 {
		return "No history entries to purge"
	}

	entryWord := "entry"
	if count > 1 {
		entryWord = "entries"
	}

	msg := fmt.Sprintf("Permanently deleted %d history %s", count, entryWord)

	if olderThanDays != nil {
		msg += fmt.Sprintf(" (older than %d days)", *olderThanDays)
	}

	return msg
}
