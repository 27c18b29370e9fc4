package sync

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

// mockStore is a minimal in-memory store for export tests. Only the read
// paths the exporter touches are fully implemented; mutations are the
// plain map updates the tests use to seed data.
type mockStore struct {
	issues  map[string]*model.Issue
	defs    map[string]*model.PropertyDefinition
	singles map[string][]model.SingleValue
	multis  map[string][]model.MultiValue
}

func newMockStore() *mockStore {
	return &mockStore{
		issues:  make(map[string]*model.Issue),
		defs:    make(map[string]*model.PropertyDefinition),
		singles: make(map[string][]model.SingleValue),
		multis:  make(map[string][]model.MultiValue),
	}
}

func (m *mockStore) CreateIssues(_ context.Context, issues []*model.Issue) error {
	for _, iss := range issues {
		m.issues[iss.ID] = iss
	}
	return nil
}

func (m *mockStore) GetIssue(_ context.Context, workspaceID, id string) (*model.Issue, error) {
	iss, ok := m.issues[id]
	if !ok || iss.WorkspaceID != workspaceID {
		return nil, sql.ErrNoRows
	}
	return iss, nil
}

func (m *mockStore) GetIssues(_ context.Context, workspaceID string, ids []string) ([]*model.Issue, error) {
	var out []*model.Issue
	for _, id := range ids {
		if iss, ok := m.issues[id]; ok && iss.WorkspaceID == workspaceID {
			cp := *iss
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockStore) TouchIssue(_ context.Context, _ string, _ time.Time) error { return nil }

func (m *mockStore) SoftDeleteIssue(_ context.Context, _, _ string, _ time.Time) error { return nil }

func (m *mockStore) ListIssueIDs(_ context.Context, q store.ListIssuesQuery) ([]string, error) {
	var issues []*model.Issue
	for _, iss := range m.issues {
		if iss.WorkspaceID == q.WorkspaceID && iss.DeletedAt == nil {
			issues = append(issues, iss)
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Seq < issues[j].Seq })
	ids := make([]string, len(issues))
	for i, iss := range issues {
		ids[i] = iss.ID
	}
	return ids, nil
}

func (m *mockStore) CountIssues(_ context.Context, workspaceID string) (int, error) {
	n := 0
	for _, iss := range m.issues {
		if iss.WorkspaceID == workspaceID && iss.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockStore) CreatePropertyDefinition(_ context.Context, def *model.PropertyDefinition) error {
	m.defs[def.ID] = def
	return nil
}

func (m *mockStore) GetPropertyDefinition(_ context.Context, workspaceID, id string) (*model.PropertyDefinition, error) {
	def, ok := m.defs[id]
	if !ok || def.WorkspaceID != workspaceID {
		return nil, sql.ErrNoRows
	}
	return def, nil
}

func (m *mockStore) ListPropertyDefinitions(_ context.Context, workspaceID string) ([]*model.PropertyDefinition, error) {
	var out []*model.PropertyDefinition
	for _, def := range m.defs {
		if def.WorkspaceID == workspaceID && def.DeletedAt == nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) SoftDeletePropertyDefinition(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (m *mockStore) InsertSingleValues(_ context.Context, rows []model.SingleValue) error {
	for _, row := range rows {
		m.singles[row.IssueID] = append(m.singles[row.IssueID], row)
	}
	return nil
}

func (m *mockStore) InsertMultiValues(_ context.Context, rows []model.MultiValue) error {
	for _, row := range rows {
		m.multis[row.IssueID] = append(m.multis[row.IssueID], row)
	}
	return nil
}

func (m *mockStore) UpsertSingleValue(_ context.Context, _ model.SingleValue) error { return nil }

func (m *mockStore) AppendMultiValues(_ context.Context, _, _ string, _ []model.MultiValue) error {
	return nil
}

func (m *mockStore) ReplaceMultiValues(_ context.Context, _, _ string, _ []model.MultiValue) error {
	return nil
}

func (m *mockStore) DeleteMultiValues(_ context.Context, _, _ string) error { return nil }

func (m *mockStore) GetSingleValues(_ context.Context, issueIDs []string) ([]model.SingleValue, error) {
	var out []model.SingleValue
	for _, id := range issueIDs {
		out = append(out, m.singles[id]...)
	}
	return out, nil
}

func (m *mockStore) GetMultiValues(_ context.Context, issueIDs []string) ([]model.MultiValue, error) {
	var out []model.MultiValue
	for _, id := range issueIDs {
		out = append(out, m.multis[id]...)
	}
	return out, nil
}

func (m *mockStore) FindIssueIDsByPredicate(_ context.Context, _ string, _ model.ValuePredicate) ([]string, error) {
	return nil, nil
}

func (m *mockStore) EnsureCounter(_ context.Context, _ string) error { return nil }

func (m *mockStore) GetCounter(_ context.Context, _ string) (int64, error) { return 0, nil }

func (m *mockStore) CompareAndSwapCounter(_ context.Context, _ string, _, _ int64) (bool, error) {
	return true, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
