package db

import (
	"context"
	"database/sql"

	"github.com/hpungsan/wxdash/internal/errors"
)

// HistoryRow is one stored weather lookup.
type HistoryRow struct {
	ID          string
	District    string
	Temperature float64
	Condition   string
	SearchedAt  int64 // unix seconds
}

// InsertHistory stores a lookup.
func InsertHistory(ctx context.Context, db *sql.DB, row *HistoryRow) error {
	query := `
		INSERT INTO history (id, district, temperature, condition, searched_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query,
		row.ID, row.District, row.Temperature, row.Condition, row.SearchedAt,
	); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListHistory returns up to limit rows, newest first. Rows with the same
// second are ordered by id; ULIDs from ops sort in creation order.
func ListHistory(ctx context.Context, db *sql.DB, limit int) ([]HistoryRow, error) {
	query := `
		SELECT id, district, temperature, condition, searched_at
		FROM history
		ORDER BY searched_at DESC, id DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []HistoryRow{}
	for rows.Next() {
		var r HistoryRow
		if err := rows.Scan(&r.ID, &r.District, &r.Temperature, &r.Condition, &r.SearchedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// CountHistory returns the number of stored lookups.
func CountHistory(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// Ping verifies the database answers a trivial query.
func Ping(ctx context.Context, db *sql.DB) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return err
	}
	if one != 1 {
		return sql.ErrNoRows
	}
	return nil
}

// PurgeHistory permanently deletes lookups made before the given unix time.
// A zero before deletes every row. Returns the number of rows removed.
func PurgeHistory(ctx context.Context, db *sql.DB, before int64) (int, error) {
	query := "DELETE FROM history"
	var args []any
	if before > 0 {
		query += " WHERE searched_at < ?"
		args = append(args, before)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}
