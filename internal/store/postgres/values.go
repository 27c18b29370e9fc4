package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/orehub/minetrack/internal/model"
)

// singleValueColumns is the column list for the single_property_values table.
const singleValueColumns = `issue_id, property_id, property_type, value, number_value`

// multiValueColumns is the column list for the multi_property_values table.
const multiValueColumns = `issue_id, property_id, property_type, value, number_value, position`

func queryInsertSingleValues(ctx context.Context, db executor, rows []model.SingleValue) error {
	if len(rows) == 0 {
		return nil
	}

	args := make([]any, 0, len(rows)*5)
	for _, r := range rows {
		args = append(args, r.IssueID, r.PropertyID, string(r.PropertyType),
			nullStringPtr(r.Value), nullFloatPtr(r.NumberValue))
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO single_property_values (`+singleValueColumns+`)
		VALUES `+valuesClause(len(rows), 5),
		args...,
	)
	if err != nil {
		return fmt.Errorf("insert single values: %w", err)
	}
	return nil
}

func queryInsertMultiValues(ctx context.Context, db executor, rows []model.MultiValue) error {
	if len(rows) == 0 {
		return nil
	}

	args := make([]any, 0, len(rows)*6)
	for _, r := range rows {
		args = append(args, r.IssueID, r.PropertyID, string(r.PropertyType),
			r.Value, nullFloatPtr(r.NumberValue), r.Position)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO multi_property_values (`+multiValueColumns+`)
		VALUES `+valuesClause(len(rows), 6),
		args...,
	)
	if err != nil {
		return fmt.Errorf("insert multi values: %w", err)
	}
	return nil
}

func queryUpsertSingleValue(ctx context.Context, db executor, row model.SingleValue) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO single_property_values (`+singleValueColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (issue_id, property_id) DO UPDATE SET
			property_type = EXCLUDED.property_type,
			value = EXCLUDED.value,
			number_value = EXCLUDED.number_value,
			updated_at = NOW(),
			deleted_at = NULL`,
		row.IssueID,
		row.PropertyID,
		string(row.PropertyType),
		nullStringPtr(row.Value),
		nullFloatPtr(row.NumberValue),
	)
	if err != nil {
		return fmt.Errorf("upsert single value: %w", err)
	}
	return nil
}

// queryAppendMultiValues inserts rows after the current highest live
// position for the (issue, property) pair. The caller is expected to hold
// a transaction when append ordering matters.
func queryAppendMultiValues(ctx context.Context, db executor, issueID, propertyID string, rows []model.MultiValue) error {
	if len(rows) == 0 {
		return nil
	}

	var max int
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), -1) FROM multi_property_values
		WHERE issue_id = $1 AND property_id = $2 AND deleted_at IS NULL`,
		issueID, propertyID,
	).Scan(&max)
	if err != nil {
		return fmt.Errorf("append multi values: read max position: %w", err)
	}

	renumbered := make([]model.MultiValue, len(rows))
	for i, r := range rows {
		r.Position = max + 1 + i
		renumbered[i] = r
	}
	return queryInsertMultiValues(ctx, db, renumbered)
}

func queryReplaceMultiValues(ctx context.Context, db executor, issueID, propertyID string, rows []model.MultiValue) error {
	if err := queryDeleteMultiValues(ctx, db, issueID, propertyID); err != nil {
		return err
	}
	return queryInsertMultiValues(ctx, db, rows)
}

// queryDeleteMultiValues soft-deletes every live row for the pair,
// unbounded by position. Deleting an already-empty set is a no-op, not an
// error.
func queryDeleteMultiValues(ctx context.Context, db executor, issueID, propertyID string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE multi_property_values SET deleted_at = NOW()
		WHERE issue_id = $1 AND property_id = $2 AND deleted_at IS NULL`,
		issueID, propertyID,
	)
	if err != nil {
		return fmt.Errorf("delete multi values: %w", err)
	}
	return nil
}

func queryGetSingleValues(ctx context.Context, db executor, issueIDs []string) ([]model.SingleValue, error) {
	if len(issueIDs) == 0 {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+singleValueColumns+` FROM single_property_values
		WHERE issue_id = ANY($1) AND deleted_at IS NULL
		ORDER BY issue_id, property_id`,
		pq.Array(issueIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("get single values: %w", err)
	}
	defer rows.Close()

	var out []model.SingleValue
	for rows.Next() {
		sv, err := scanSingleValue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func queryGetMultiValues(ctx context.Context, db executor, issueIDs []string) ([]model.MultiValue, error) {
	if len(issueIDs) == 0 {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+multiValueColumns+` FROM multi_property_values
		WHERE issue_id = ANY($1) AND deleted_at IS NULL
		ORDER BY issue_id, property_id, position`,
		pq.Array(issueIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("get multi values: %w", err)
	}
	defer rows.Close()

	var out []model.MultiValue
	for rows.Next() {
		mv, err := scanMultiValue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE pattern metacharacters in a user-supplied value.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// queryFindIssueIDsByPredicate matches only value rows whose parent issue
// is live and belongs to the workspace. Value rows outlive their issue's
// soft delete, so the join does the scoping the value table cannot.
func queryFindIssueIDsByPredicate(ctx context.Context, db executor, workspaceID string, pred model.ValuePredicate) ([]string, error) {
	table := "single_property_values"
	if pred.Multi {
		table = "multi_property_values"
	}

	var (
		match string
		arg   any
	)
	switch pred.Op {
	case model.OpEq:
		if len(pred.Numbers) > 0 {
			match = "v.number_value = $3"
			arg = pred.Numbers[0]
		} else {
			match = "v.value = $3"
			arg = pred.Values[0]
		}
	case model.OpIn:
		if len(pred.Numbers) > 0 {
			match = "v.number_value = ANY($3)"
			arg = pq.Array(pred.Numbers)
		} else {
			match = "v.value = ANY($3)"
			arg = pq.Array(pred.Values)
		}
	case model.OpContains:
		match = `v.value LIKE '%' || $3 || '%' ESCAPE '\'`
		arg = escapeLike(pred.Values[0])
	case model.OpStartsWith:
		match = `v.value LIKE $3 || '%' ESCAPE '\'`
		arg = escapeLike(pred.Values[0])
	case model.OpEndsWith:
		match = `v.value LIKE '%' || $3 ESCAPE '\'`
		arg = escapeLike(pred.Values[0])
	default:
		return nil, fmt.Errorf("predicate operator %q not evaluable", pred.Op)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT DISTINCT v.issue_id FROM "+table+" v"+
			" JOIN issues i ON i.id = v.issue_id AND i.workspace_id = $1 AND i.deleted_at IS NULL"+
			" WHERE v.property_id = $2 AND v.deleted_at IS NULL AND "+match,
		workspaceID, pred.PropertyID, arg,
	)
	if err != nil {
		return nil, fmt.Errorf("find issue ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan issue id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
