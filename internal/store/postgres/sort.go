package postgres

import (
	"strings"

	"github.com/orehub/minetrack/internal/model"
)

// orderByClause builds the ORDER BY expression for a listing query. Each
// sort key becomes a correlated scalar subquery against the single-value
// table, because no column of the issues table carries the property value
// to sort on. NULLS LAST keeps issues without a value after every issue
// that has one, for both directions. With no keys, newest first.
//
// Property ids are interpolated, not bound: Postgres does not allow bind
// parameters to change a plan's shape per key, so the id is escaped as a
// string literal instead.
func orderByClause(keys []model.SortKey) string {
	if len(keys) == 0 {
		return "issues.created_at DESC"
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		col := "sv.value"
		if k.Numeric {
			col = "sv.number_value"
		}
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		parts[i] = "(SELECT " + col + " FROM single_property_values sv" +
			" WHERE sv.issue_id = issues.id AND sv.property_id = " + quoteLiteral(k.PropertyID) +
			" AND sv.deleted_at IS NULL LIMIT 1) " + dir + " NULLS LAST"
	}
	return strings.Join(parts, ", ")
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
