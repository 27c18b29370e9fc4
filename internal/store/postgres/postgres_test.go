package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var (
	issueCols      = []string{"id", "workspace_id", "seq", "created_at", "updated_at", "deleted_at"}
	definitionCols = []string{"id", "workspace_id", "name", "type", "config", "readonly", "nullable", "created_at", "deleted_at"}
	singleCols     = []string{"issue_id", "property_id", "property_type", "value", "number_value"}
	multiCols      = []string{"issue_id", "property_id", "property_type", "value", "number_value", "position"}
)

func strptr(s string) *string { return &s }

func TestCreateIssues(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	issues := []*model.Issue{
		{ID: "iss-aaa", WorkspaceID: "ws-1", Seq: 1, CreatedAt: now, UpdatedAt: now},
		{ID: "iss-bbb", WorkspaceID: "ws-1", Seq: 2, CreatedAt: now, UpdatedAt: now},
	}

	mock.ExpectExec(`INSERT INTO issues \(id, workspace_id, seq, created_at, updated_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\), \(\$6, \$7, \$8, \$9, \$10\)`).
		WithArgs("iss-aaa", "ws-1", int64(1), now, now, "iss-bbb", "ws-1", int64(2), now, now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.CreateIssues(context.Background(), issues)
	require.NoError(t, err)
}

func TestCreateIssues_Empty(t *testing.T) {
	db, _ := newMockDB(t)
	s := &PostgresStore{db: db}

	// No statement expected for an empty batch.
	err := s.CreateIssues(context.Background(), nil)
	require.NoError(t, err)
}

func TestGetIssue(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, workspace_id, seq, created_at, updated_at, deleted_at FROM issues\s+WHERE workspace_id = \$1 AND id = \$2 AND deleted_at IS NULL`).
		WithArgs("ws-1", "iss-aaa").
		WillReturnRows(sqlmock.NewRows(issueCols).
			AddRow("iss-aaa", "ws-1", int64(7), now, now, nil))

	iss, err := s.GetIssue(context.Background(), "ws-1", "iss-aaa")
	require.NoError(t, err)
	assert.Equal(t, "iss-aaa", iss.ID)
	assert.Equal(t, int64(7), iss.Seq)
	assert.Nil(t, iss.DeletedAt)
}

func TestGetIssue_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT .* FROM issues`).
		WithArgs("ws-1", "iss-gone").
		WillReturnRows(sqlmock.NewRows(issueCols))

	_, err := s.GetIssue(context.Background(), "ws-1", "iss-gone")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetIssues_PreservesOrder(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	// Rows come back in arbitrary order; the result follows the input ids.
	mock.ExpectQuery(`SELECT id, workspace_id, seq, created_at, updated_at, deleted_at FROM issues\s+WHERE workspace_id = \$1 AND id = ANY\(\$2\) AND deleted_at IS NULL`).
		WithArgs("ws-1", pq.Array([]string{"iss-bbb", "iss-aaa", "iss-gone"})).
		WillReturnRows(sqlmock.NewRows(issueCols).
			AddRow("iss-aaa", "ws-1", int64(1), now, now, nil).
			AddRow("iss-bbb", "ws-1", int64(2), now, now, nil))

	issues, err := s.GetIssues(context.Background(), "ws-1", []string{"iss-bbb", "iss-aaa", "iss-gone"})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "iss-bbb", issues[0].ID)
	assert.Equal(t, "iss-aaa", issues[1].ID)
}

func TestTouchIssue_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE issues SET updated_at = \$2\s+WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs("iss-gone", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.TouchIssue(context.Background(), "iss-gone", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSoftDeleteIssue(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE issues SET deleted_at = \$3, updated_at = \$3\s+WHERE workspace_id = \$1 AND id = \$2 AND deleted_at IS NULL`).
		WithArgs("ws-1", "iss-aaa", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.SoftDeleteIssue(context.Background(), "ws-1", "iss-aaa", now)
	require.NoError(t, err)
}

func TestSoftDeleteIssue_AlreadyDeleted(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE issues SET deleted_at = \$3`).
		WithArgs("ws-1", "iss-aaa", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SoftDeleteIssue(context.Background(), "ws-1", "iss-aaa", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListIssueIDs_Default(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT id FROM issues WHERE workspace_id = \$1 AND deleted_at IS NULL ORDER BY issues\.created_at DESC`).
		WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("iss-bbb").AddRow("iss-aaa"))

	ids, err := s.ListIssueIDs(context.Background(), store.ListIssuesQuery{WorkspaceID: "ws-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"iss-bbb", "iss-aaa"}, ids)
}

func TestListIssueIDs_CandidatesSortAndPage(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT id FROM issues WHERE workspace_id = \$1 AND deleted_at IS NULL AND id = ANY\(\$2\) ORDER BY \(SELECT sv\.number_value FROM single_property_values sv WHERE sv\.issue_id = issues\.id AND sv\.property_id = 'sys-id' AND sv\.deleted_at IS NULL LIMIT 1\) DESC NULLS LAST LIMIT \$3 OFFSET \$4`).
		WithArgs("ws-1", pq.Array([]string{"iss-aaa", "iss-bbb"}), 10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("iss-bbb"))

	ids, err := s.ListIssueIDs(context.Background(), store.ListIssuesQuery{
		WorkspaceID: "ws-1",
		IDs:         []string{"iss-aaa", "iss-bbb"},
		Sort:        []model.SortKey{{PropertyID: "sys-id", Descending: true, Numeric: true}},
		Limit:       10,
		Offset:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"iss-bbb"}, ids)
}

func TestListIssueIDs_EmptyCandidateSet(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	// An empty but non-nil candidate list still constrains the query.
	mock.ExpectQuery(`SELECT id FROM issues WHERE workspace_id = \$1 AND deleted_at IS NULL AND id = ANY\(\$2\)`).
		WithArgs("ws-1", pq.Array([]string{})).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := s.ListIssueIDs(context.Background(), store.ListIssuesQuery{
		WorkspaceID: "ws-1",
		IDs:         []string{},
	})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCountIssues(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM issues\s+WHERE workspace_id = \$1 AND deleted_at IS NULL`).
		WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := s.CountIssues(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestCreatePropertyDefinition(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	def := &model.PropertyDefinition{
		ID:          "prop-title",
		WorkspaceID: "ws-1",
		Name:        "Title",
		Type:        model.TypeText,
		Config:      model.TextConfig{MaxLength: 50},
		Nullable:    true,
		CreatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO property_definitions \(id, workspace_id, name, type, config, readonly, nullable, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)`).
		WithArgs("prop-title", "ws-1", "Title", "text", []byte(`{"max_length":50}`), false, true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.CreatePropertyDefinition(context.Background(), def)
	require.NoError(t, err)
}

func TestGetPropertyDefinition_DecodesConfig(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, workspace_id, name, type, config, readonly, nullable, created_at, deleted_at FROM property_definitions\s+WHERE workspace_id = \$1 AND id = \$2 AND deleted_at IS NULL`).
		WithArgs("ws-1", "prop-status").
		WillReturnRows(sqlmock.NewRows(definitionCols).
			AddRow("prop-status", "ws-1", "Status", "select", []byte(`{"options":["open","closed"]}`), false, true, now, nil))

	def, err := s.GetPropertyDefinition(context.Background(), "ws-1", "prop-status")
	require.NoError(t, err)
	assert.Equal(t, model.TypeSelect, def.Type)
	cfg, ok := def.Config.(model.SelectConfig)
	require.True(t, ok)
	assert.Equal(t, []string{"open", "closed"}, cfg.Options)
}

func TestListPropertyDefinitions(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM property_definitions\s+WHERE workspace_id = \$1 AND deleted_at IS NULL\s+ORDER BY created_at ASC`).
		WithArgs("ws-1").
		WillReturnRows(sqlmock.NewRows(definitionCols).
			AddRow("prop-title", "ws-1", "Title", "text", nil, false, true, now, nil).
			AddRow("prop-tags", "ws-1", "Tags", "multi_select", []byte(`{"options":["a","b"]}`), false, true, now, nil))

	defs, err := s.ListPropertyDefinitions(context.Background(), "ws-1")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "prop-title", defs[0].ID)
	assert.Equal(t, "prop-tags", defs[1].ID)
}

func TestSoftDeletePropertyDefinition_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE property_definitions SET deleted_at = \$3\s+WHERE workspace_id = \$1 AND id = \$2 AND deleted_at IS NULL`).
		WithArgs("ws-1", "prop-gone", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SoftDeletePropertyDefinition(context.Background(), "ws-1", "prop-gone", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpsertSingleValue(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`INSERT INTO single_property_values \(issue_id, property_id, property_type, value, number_value\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\)\s+ON CONFLICT \(issue_id, property_id\) DO UPDATE SET\s+property_type = EXCLUDED\.property_type,\s+value = EXCLUDED\.value,\s+number_value = EXCLUDED\.number_value,\s+updated_at = NOW\(\),\s+deleted_at = NULL`).
		WithArgs("iss-aaa", "prop-title", "text", sql.NullString{String: "hello", Valid: true}, sql.NullFloat64{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertSingleValue(context.Background(), model.SingleValue{
		IssueID:      "iss-aaa",
		PropertyID:   "prop-title",
		PropertyType: model.TypeText,
		Value:        strptr("hello"),
	})
	require.NoError(t, err)
}

func TestInsertSingleValues_NullValue(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`INSERT INTO single_property_values \(issue_id, property_id, property_type, value, number_value\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs("iss-aaa", "prop-owner", "user", sql.NullString{}, sql.NullFloat64{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.InsertSingleValues(context.Background(), []model.SingleValue{
		{IssueID: "iss-aaa", PropertyID: "prop-owner", PropertyType: model.TypeUser},
	})
	require.NoError(t, err)
}

func TestAppendMultiValues_PositionsAfterMax(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), -1\) FROM multi_property_values\s+WHERE issue_id = \$1 AND property_id = \$2 AND deleted_at IS NULL`).
		WithArgs("iss-aaa", "prop-tags").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))

	mock.ExpectExec(`INSERT INTO multi_property_values \(issue_id, property_id, property_type, value, number_value, position\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\), \(\$7, \$8, \$9, \$10, \$11, \$12\)`).
		WithArgs(
			"iss-aaa", "prop-tags", "multi_select", "b", sql.NullFloat64{}, 2,
			"iss-aaa", "prop-tags", "multi_select", "c", sql.NullFloat64{}, 3,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.AppendMultiValues(context.Background(), "iss-aaa", "prop-tags", []model.MultiValue{
		{IssueID: "iss-aaa", PropertyID: "prop-tags", PropertyType: model.TypeMultiSelect, Value: "b"},
		{IssueID: "iss-aaa", PropertyID: "prop-tags", PropertyType: model.TypeMultiSelect, Value: "c"},
	})
	require.NoError(t, err)
}

func TestAppendMultiValues_EmptySet(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	// First append lands at position 0.
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), -1\)`).
		WithArgs("iss-aaa", "prop-tags").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(-1))

	mock.ExpectExec(`INSERT INTO multi_property_values`).
		WithArgs("iss-aaa", "prop-tags", "multi_select", "a", sql.NullFloat64{}, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.AppendMultiValues(context.Background(), "iss-aaa", "prop-tags", []model.MultiValue{
		{IssueID: "iss-aaa", PropertyID: "prop-tags", PropertyType: model.TypeMultiSelect, Value: "a"},
	})
	require.NoError(t, err)
}

func TestReplaceMultiValues(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`UPDATE multi_property_values SET deleted_at = NOW\(\)\s+WHERE issue_id = \$1 AND property_id = \$2 AND deleted_at IS NULL`).
		WithArgs("iss-aaa", "prop-tags").
		WillReturnResult(sqlmock.NewResult(0, 3))

	mock.ExpectExec(`INSERT INTO multi_property_values`).
		WithArgs("iss-aaa", "prop-tags", "multi_select", "a", sql.NullFloat64{}, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.ReplaceMultiValues(context.Background(), "iss-aaa", "prop-tags", []model.MultiValue{
		{IssueID: "iss-aaa", PropertyID: "prop-tags", PropertyType: model.TypeMultiSelect, Value: "a", Position: 0},
	})
	require.NoError(t, err)
}

func TestDeleteMultiValues_NoRowsIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`UPDATE multi_property_values SET deleted_at = NOW\(\)`).
		WithArgs("iss-aaa", "prop-tags").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteMultiValues(context.Background(), "iss-aaa", "prop-tags")
	require.NoError(t, err)
}

func TestGetSingleValues(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT issue_id, property_id, property_type, value, number_value FROM single_property_values\s+WHERE issue_id = ANY\(\$1\) AND deleted_at IS NULL\s+ORDER BY issue_id, property_id`).
		WithArgs(pq.Array([]string{"iss-aaa"})).
		WillReturnRows(sqlmock.NewRows(singleCols).
			AddRow("iss-aaa", "prop-title", "text", "hello", nil).
			AddRow("iss-aaa", "sys-id", "number", "7", 7.0))

	values, err := s.GetSingleValues(context.Background(), []string{"iss-aaa"})
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "hello", *values[0].Value)
	assert.Nil(t, values[0].NumberValue)
	assert.Equal(t, 7.0, *values[1].NumberValue)
}

func TestGetMultiValues(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT issue_id, property_id, property_type, value, number_value, position FROM multi_property_values\s+WHERE issue_id = ANY\(\$1\) AND deleted_at IS NULL\s+ORDER BY issue_id, property_id, position`).
		WithArgs(pq.Array([]string{"iss-aaa"})).
		WillReturnRows(sqlmock.NewRows(multiCols).
			AddRow("iss-aaa", "prop-tags", "multi_select", "a", nil, 0).
			AddRow("iss-aaa", "prop-tags", "multi_select", "b", nil, 1))

	values, err := s.GetMultiValues(context.Background(), []string{"iss-aaa"})
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, 0, values[0].Position)
	assert.Equal(t, "b", values[1].Value)
}

func TestFindIssueIDsByPredicate(t *testing.T) {
	// Every predicate variant must scope through the issues join so other
	// workspaces and soft-deleted issues never match.
	const joinClause = `JOIN issues i ON i\.id = v\.issue_id AND i\.workspace_id = \$1 AND i\.deleted_at IS NULL`

	tests := []struct {
		name  string
		pred  model.ValuePredicate
		query string
		arg   any
	}{
		{
			name:  "eq on single values",
			pred:  model.ValuePredicate{PropertyID: "prop-status", Op: model.OpEq, Values: []string{"open"}},
			query: `SELECT DISTINCT v\.issue_id FROM single_property_values v ` + joinClause + ` WHERE v\.property_id = \$2 AND v\.deleted_at IS NULL AND v\.value = \$3`,
			arg:   "open",
		},
		{
			name:  "in on multi values",
			pred:  model.ValuePredicate{PropertyID: "prop-tags", Op: model.OpIn, Values: []string{"a", "b"}, Multi: true},
			query: `SELECT DISTINCT v\.issue_id FROM multi_property_values v ` + joinClause + ` WHERE v\.property_id = \$2 AND v\.deleted_at IS NULL AND v\.value = ANY\(\$3\)`,
			arg:   pq.Array([]string{"a", "b"}),
		},
		{
			name:  "eq on numbers",
			pred:  model.ValuePredicate{PropertyID: "sys-id", Op: model.OpEq, Numbers: []float64{7}},
			query: `SELECT DISTINCT v\.issue_id FROM single_property_values v ` + joinClause + ` WHERE v\.property_id = \$2 AND v\.deleted_at IS NULL AND v\.number_value = \$3`,
			arg:   7.0,
		},
		{
			name:  "contains escapes pattern chars",
			pred:  model.ValuePredicate{PropertyID: "prop-title", Op: model.OpContains, Values: []string{"50%_done"}},
			query: `SELECT DISTINCT v\.issue_id FROM single_property_values v ` + joinClause + ` WHERE v\.property_id = \$2 AND v\.deleted_at IS NULL AND v\.value LIKE '%' \|\| \$3 \|\| '%' ESCAPE '\\'`,
			arg:   `50\%\_done`,
		},
		{
			name:  "startsWith",
			pred:  model.ValuePredicate{PropertyID: "prop-title", Op: model.OpStartsWith, Values: []string{"bug"}},
			query: `SELECT DISTINCT v\.issue_id FROM single_property_values v ` + joinClause + ` WHERE v\.property_id = \$2 AND v\.deleted_at IS NULL AND v\.value LIKE \$3 \|\| '%' ESCAPE '\\'`,
			arg:   "bug",
		},
		{
			name:  "endsWith",
			pred:  model.ValuePredicate{PropertyID: "prop-title", Op: model.OpEndsWith, Values: []string{"fix"}},
			query: `SELECT DISTINCT v\.issue_id FROM single_property_values v ` + joinClause + ` WHERE v\.property_id = \$2 AND v\.deleted_at IS NULL AND v\.value LIKE '%' \|\| \$3 ESCAPE '\\'`,
			arg:   "fix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			s := &PostgresStore{db: db}

			mock.ExpectQuery(tt.query).
				WithArgs("ws-1", tt.pred.PropertyID, tt.arg).
				WillReturnRows(sqlmock.NewRows([]string{"issue_id"}).AddRow("iss-aaa"))

			ids, err := s.FindIssueIDsByPredicate(context.Background(), "ws-1", tt.pred)
			require.NoError(t, err)
			assert.Equal(t, []string{"iss-aaa"}, ids)
		})
	}
}

func TestFindIssueIDsByPredicate_UnsupportedOperator(t *testing.T) {
	db, _ := newMockDB(t)
	s := &PostgresStore{db: db}

	_, err := s.FindIssueIDsByPredicate(context.Background(), "ws-1", model.ValuePredicate{
		PropertyID: "prop-title",
		Op:         model.Operator("between"),
	})
	assert.Error(t, err)
}

func TestEnsureCounter(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`INSERT INTO counters \(entity_name, current_value\)\s+VALUES \(\$1, 0\)\s+ON CONFLICT \(entity_name\) DO NOTHING`).
		WithArgs("issue").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.EnsureCounter(context.Background(), "issue")
	require.NoError(t, err)
}

func TestGetCounter(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery(`SELECT current_value FROM counters WHERE entity_name = \$1`).
		WithArgs("issue").
		WillReturnRows(sqlmock.NewRows([]string{"current_value"}).AddRow(int64(41)))

	v, err := s.GetCounter(context.Background(), "issue")
	require.NoError(t, err)
	assert.Equal(t, int64(41), v)
}

func TestCompareAndSwapCounter(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec(`UPDATE counters SET current_value = \$3\s+WHERE entity_name = \$1 AND current_value = \$2`).
		WithArgs("issue", int64(41), int64(43)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := s.CompareAndSwapCounter(context.Background(), "issue", 41, 43)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareAndSwapCounter_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	// A concurrent writer moved the counter; zero rows matched.
	mock.ExpectExec(`UPDATE counters SET current_value = \$3`).
		WithArgs("issue", int64(41), int64(43)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.CompareAndSwapCounter(context.Background(), "issue", 41, 43)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE issues SET updated_at = \$2`).
		WithArgs("iss-aaa", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.TouchIssue(context.Background(), "iss-aaa", now)
	})
	require.NoError(t, err)
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := sql.ErrTxDone
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestOrderByClause(t *testing.T) {
	tests := []struct {
		name string
		keys []model.SortKey
		want string
	}{
		{
			name: "no keys",
			want: "issues.created_at DESC",
		},
		{
			name: "text ascending",
			keys: []model.SortKey{{PropertyID: "prop-title"}},
			want: "(SELECT sv.value FROM single_property_values sv WHERE sv.issue_id = issues.id AND sv.property_id = 'prop-title' AND sv.deleted_at IS NULL LIMIT 1) ASC NULLS LAST",
		},
		{
			name: "numeric descending",
			keys: []model.SortKey{{PropertyID: "sys-id", Descending: true, Numeric: true}},
			want: "(SELECT sv.number_value FROM single_property_values sv WHERE sv.issue_id = issues.id AND sv.property_id = 'sys-id' AND sv.deleted_at IS NULL LIMIT 1) DESC NULLS LAST",
		},
		{
			name: "quote in property id",
			keys: []model.SortKey{{PropertyID: "o'brien"}},
			want: "(SELECT sv.value FROM single_property_values sv WHERE sv.issue_id = issues.id AND sv.property_id = 'o''brien' AND sv.deleted_at IS NULL LIMIT 1) ASC NULLS LAST",
		},
		{
			name: "multiple keys",
			keys: []model.SortKey{
				{PropertyID: "prop-status"},
				{PropertyID: "sys-id", Descending: true, Numeric: true},
			},
			want: "(SELECT sv.value FROM single_property_values sv WHERE sv.issue_id = issues.id AND sv.property_id = 'prop-status' AND sv.deleted_at IS NULL LIMIT 1) ASC NULLS LAST, " +
				"(SELECT sv.number_value FROM single_property_values sv WHERE sv.issue_id = issues.id AND sv.property_id = 'sys-id' AND sv.deleted_at IS NULL LIMIT 1) DESC NULLS LAST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderByClause(tt.keys))
		})
	}
}

func TestValuesClause(t *testing.T) {
	assert.Equal(t, "($1, $2)", valuesClause(1, 2))
	assert.Equal(t, "($1, $2, $3), ($4, $5, $6)", valuesClause(2, 3))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `plain`, escapeLike("plain"))
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
}
