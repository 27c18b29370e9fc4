package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

// issueColumns is the column list used for SELECT statements on the issues table.
const issueColumns = `id, workspace_id, seq, created_at, updated_at, deleted_at`

// definitionColumns is the column list for the property_definitions table.
const definitionColumns = `id, workspace_id, name, type, config, readonly, nullable, created_at, deleted_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// valuesClause builds a multi-row VALUES clause: rows rows of width columns,
// numbered from $1 upward.
func valuesClause(rows, width int) string {
	parts := make([]string, rows)
	n := 1
	for i := range parts {
		ph := make([]string, width)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", n)
			n++
		}
		parts[i] = "(" + strings.Join(ph, ", ") + ")"
	}
	return strings.Join(parts, ", ")
}

func queryCreateIssues(ctx context.Context, db executor, issues []*model.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	args := make([]any, 0, len(issues)*5)
	for _, iss := range issues {
		args = append(args, iss.ID, iss.WorkspaceID, iss.Seq, iss.CreatedAt, iss.UpdatedAt)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO issues (id, workspace_id, seq, created_at, updated_at)
		VALUES `+valuesClause(len(issues), 5),
		args...,
	)
	if err != nil {
		return fmt.Errorf("create issues: %w", err)
	}
	return nil
}

func queryGetIssue(ctx context.Context, db executor, workspaceID, id string) (*model.Issue, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+issueColumns+` FROM issues
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id,
	)
	return scanIssue(row)
}

func queryGetIssues(ctx context.Context, db executor, workspaceID string, ids []string) ([]*model.Issue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+issueColumns+` FROM issues
		WHERE workspace_id = $1 AND id = ANY($2) AND deleted_at IS NULL`,
		workspaceID, pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("get issues: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*model.Issue, len(ids))
	for rows.Next() {
		iss, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		byID[iss.ID] = iss
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get issues: %w", err)
	}

	// Preserve the caller's ordering, typically a sorted page.
	out := make([]*model.Issue, 0, len(byID))
	for _, id := range ids {
		if iss, ok := byID[id]; ok {
			out = append(out, iss)
		}
	}
	return out, nil
}

func queryTouchIssue(ctx context.Context, db executor, id string, at time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE issues SET updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`,
		id, at,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func querySoftDeleteIssue(ctx context.Context, db executor, workspaceID, id string, at time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE issues SET deleted_at = $3, updated_at = $3
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id, at,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListIssueIDs(ctx context.Context, db executor, q store.ListIssuesQuery) ([]string, error) {
	var (
		args   []any
		argIdx int
	)
	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	query := "SELECT id FROM issues WHERE workspace_id = " + nextArg() + " AND deleted_at IS NULL"
	args = append(args, q.WorkspaceID)

	if q.IDs != nil {
		query += " AND id = ANY(" + nextArg() + ")"
		args = append(args, pq.Array(q.IDs))
	}

	query += " ORDER BY " + orderByClause(q.Sort)

	if q.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, q.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issue ids: %w", err)
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

func queryCountIssues(ctx context.Context, db executor, workspaceID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM issues
		WHERE workspace_id = $1 AND deleted_at IS NULL`,
		workspaceID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return n, nil
}

func queryCreatePropertyDefinition(ctx context.Context, db executor, def *model.PropertyDefinition) error {
	cfg, err := model.EncodeConfig(def.Config)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO property_definitions (id, workspace_id, name, type, config, readonly, nullable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		def.ID,
		def.WorkspaceID,
		def.Name,
		string(def.Type),
		jsonbBytes(cfg),
		def.Readonly,
		def.Nullable,
		def.CreatedAt,
	)
	return err
}

func queryGetPropertyDefinition(ctx context.Context, db executor, workspaceID, id string) (*model.PropertyDefinition, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+definitionColumns+` FROM property_definitions
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id,
	)
	return scanPropertyDefinition(row)
}

func queryListPropertyDefinitions(ctx context.Context, db executor, workspaceID string) ([]*model.PropertyDefinition, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+definitionColumns+` FROM property_definitions
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []*model.PropertyDefinition
	for rows.Next() {
		def, err := scanPropertyDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func querySoftDeletePropertyDefinition(ctx context.Context, db executor, workspaceID, id string, at time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE property_definitions SET deleted_at = $3
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id, at,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
