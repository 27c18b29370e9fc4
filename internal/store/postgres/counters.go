package postgres

import (
	"context"
	"fmt"
)

func queryEnsureCounter(ctx context.Context, db executor, entityName string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO counters (entity_name, current_value)
		VALUES ($1, 0)
		ON CONFLICT (entity_name) DO NOTHING`,
		entityName,
	)
	if err != nil {
		return fmt.Errorf("ensure counter: %w", err)
	}
	return nil
}

func queryGetCounter(ctx context.Context, db executor, entityName string) (int64, error) {
	var v int64
	err := db.QueryRowContext(ctx, `
		SELECT current_value FROM counters WHERE entity_name = $1`,
		entityName,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("get counter: %w", err)
	}
	return v, nil
}

// queryCompareAndSwapCounter advances the counter only when it still holds
// old. Losing the race is reported as false with no error; conflict
// detection is the rows-affected count, not error-message matching, so it
// works on any SQL backend.
func queryCompareAndSwapCounter(ctx context.Context, db executor, entityName string, old, new int64) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE counters SET current_value = $3
		WHERE entity_name = $1 AND current_value = $2`,
		entityName, old, new,
	)
	if err != nil {
		return false, fmt.Errorf("swap counter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
