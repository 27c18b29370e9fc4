package engine

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

// mockStore is an in-memory store for engine tests. It keeps the same
// visibility rules as the real store: soft-deleted rows are invisible to
// every read, and value reads skip rows whose parent issue is gone.
type mockStore struct {
	issues   map[string]*model.Issue
	defs     map[string]*model.PropertyDefinition
	singles  map[string]map[string]model.SingleValue // issue id -> property id
	multis   map[string]map[string][]model.MultiValue
	counters map[string]int64

	// casFailures makes the next N CompareAndSwapCounter calls lose the
	// race, for exercising the retry path.
	casFailures int
	casCalls    int

	predicateCalls int
}

func newMockStore() *mockStore {
	return &mockStore{
		issues:   make(map[string]*model.Issue),
		defs:     make(map[string]*model.PropertyDefinition),
		singles:  make(map[string]map[string]model.SingleValue),
		multis:   make(map[string]map[string][]model.MultiValue),
		counters: make(map[string]int64),
	}
}

func (m *mockStore) CreateIssues(_ context.Context, issues []*model.Issue) error {
	for _, iss := range issues {
		cp := *iss
		m.issues[iss.ID] = &cp
	}
	return nil
}

func (m *mockStore) GetIssue(_ context.Context, workspaceID, id string) (*model.Issue, error) {
	iss, ok := m.issues[id]
	if !ok || iss.WorkspaceID != workspaceID || iss.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	cp := *iss
	return &cp, nil
}

func (m *mockStore) GetIssues(_ context.Context, workspaceID string, ids []string) ([]*model.Issue, error) {
	var out []*model.Issue
	for _, id := range ids {
		iss, ok := m.issues[id]
		if !ok || iss.WorkspaceID != workspaceID || iss.DeletedAt != nil {
			continue
		}
		cp := *iss
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockStore) TouchIssue(_ context.Context, id string, at time.Time) error {
	iss, ok := m.issues[id]
	if !ok || iss.DeletedAt != nil {
		return sql.ErrNoRows
	}
	iss.UpdatedAt = at
	return nil
}

func (m *mockStore) SoftDeleteIssue(_ context.Context, workspaceID, id string, at time.Time) error {
	iss, ok := m.issues[id]
	if !ok || iss.WorkspaceID != workspaceID || iss.DeletedAt != nil {
		return sql.ErrNoRows
	}
	iss.DeletedAt = &at
	return nil
}

func (m *mockStore) ListIssueIDs(_ context.Context, q store.ListIssuesQuery) ([]string, error) {
	var candidates []*model.Issue
	allowed := map[string]struct{}{}
	for _, id := range q.IDs {
		allowed[id] = struct{}{}
	}
	for _, iss := range m.issues {
		if iss.WorkspaceID != q.WorkspaceID || iss.DeletedAt != nil {
			continue
		}
		if q.IDs != nil {
			if _, ok := allowed[iss.ID]; !ok {
				continue
			}
		}
		candidates = append(candidates, iss)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		for _, key := range q.Sort {
			av, aok := m.sortValue(a.ID, key)
			bv, bok := m.sortValue(b.ID, key)
			if !aok || !bok {
				if aok != bok {
					return aok // nulls last
				}
				continue
			}
			if av == bv {
				continue
			}
			if key.Descending {
				return av > bv
			}
			return av < bv
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	ids := make([]string, len(candidates))
	for i, iss := range candidates {
		ids[i] = iss.ID
	}
	if q.Offset > 0 {
		if q.Offset >= len(ids) {
			return nil, nil
		}
		ids = ids[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(ids) {
		ids = ids[:q.Limit]
	}
	return ids, nil
}

// sortValue projects one issue's value for a sort key onto a comparable
// string. Numeric keys are zero-padded so string comparison matches
// numeric order for the magnitudes tests use.
func (m *mockStore) sortValue(issueID string, key model.SortKey) (string, bool) {
	sv, ok := m.singles[issueID][key.PropertyID]
	if !ok {
		return "", false
	}
	if key.Numeric {
		if sv.NumberValue == nil {
			return "", false
		}
		return padNumber(*sv.NumberValue), true
	}
	if sv.Value == nil {
		return "", false
	}
	return *sv.Value, true
}

func padNumber(n float64) string {
	s := make([]byte, 0, 12)
	v := int64(n)
	for i := int64(100_000_000_000); i >= 1; i /= 10 {
		s = append(s, byte('0'+(v/i)%10))
	}
	return string(s)
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
	cp := *def
	m.defs[def.ID] = &cp
	return nil
}

func (m *mockStore) GetPropertyDefinition(_ context.Context, workspaceID, id string) (*model.PropertyDefinition, error) {
	def, ok := m.defs[id]
	if !ok || def.WorkspaceID != workspaceID || def.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	cp := *def
	return &cp, nil
}

func (m *mockStore) ListPropertyDefinitions(_ context.Context, workspaceID string) ([]*model.PropertyDefinition, error) {
	var out []*model.PropertyDefinition
	for _, def := range m.defs {
		if def.WorkspaceID == workspaceID && def.DeletedAt == nil {
			cp := *def
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) SoftDeletePropertyDefinition(_ context.Context, workspaceID, id string, at time.Time) error {
	def, ok := m.defs[id]
	if !ok || def.WorkspaceID != workspaceID || def.DeletedAt != nil {
		return sql.ErrNoRows
	}
	def.DeletedAt = &at
	return nil
}

func (m *mockStore) InsertSingleValues(_ context.Context, rows []model.SingleValue) error {
	for _, row := range rows {
		if m.singles[row.IssueID] == nil {
			m.singles[row.IssueID] = make(map[string]model.SingleValue)
		}
		m.singles[row.IssueID][row.PropertyID] = row
	}
	return nil
}

func (m *mockStore) InsertMultiValues(_ context.Context, rows []model.MultiValue) error {
	for _, row := range rows {
		if m.multis[row.IssueID] == nil {
			m.multis[row.IssueID] = make(map[string][]model.MultiValue)
		}
		m.multis[row.IssueID][row.PropertyID] = append(m.multis[row.IssueID][row.PropertyID], row)
	}
	return nil
}

func (m *mockStore) UpsertSingleValue(ctx context.Context, row model.SingleValue) error {
	return m.InsertSingleValues(ctx, []model.SingleValue{row})
}

func (m *mockStore) AppendMultiValues(_ context.Context, issueID, propertyID string, rows []model.MultiValue) error {
	existing := m.multis[issueID][propertyID]
	next := 0
	for _, mv := range existing {
		if mv.Position >= next {
			next = mv.Position + 1
		}
	}
	if m.multis[issueID] == nil {
		m.multis[issueID] = make(map[string][]model.MultiValue)
	}
	for i, row := range rows {
		row.Position = next + i
		m.multis[issueID][propertyID] = append(m.multis[issueID][propertyID], row)
	}
	return nil
}

func (m *mockStore) ReplaceMultiValues(ctx context.Context, issueID, propertyID string, rows []model.MultiValue) error {
	if err := m.DeleteMultiValues(ctx, issueID, propertyID); err != nil {
		return err
	}
	return m.InsertMultiValues(ctx, rows)
}

func (m *mockStore) DeleteMultiValues(_ context.Context, issueID, propertyID string) error {
	if m.multis[issueID] != nil {
		delete(m.multis[issueID], propertyID)
	}
	return nil
}

func (m *mockStore) GetSingleValues(_ context.Context, issueIDs []string) ([]model.SingleValue, error) {
	var out []model.SingleValue
	for _, id := range issueIDs {
		for _, sv := range m.singles[id] {
			out = append(out, sv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssueID != out[j].IssueID {
			return out[i].IssueID < out[j].IssueID
		}
		return out[i].PropertyID < out[j].PropertyID
	})
	return out, nil
}

func (m *mockStore) GetMultiValues(_ context.Context, issueIDs []string) ([]model.MultiValue, error) {
	var out []model.MultiValue
	for _, id := range issueIDs {
		for _, rows := range m.multis[id] {
			out = append(out, rows...)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssueID != out[j].IssueID {
			return out[i].IssueID < out[j].IssueID
		}
		if out[i].PropertyID != out[j].PropertyID {
			return out[i].PropertyID < out[j].PropertyID
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (m *mockStore) FindIssueIDsByPredicate(_ context.Context, workspaceID string, pred model.ValuePredicate) ([]string, error) {
	m.predicateCalls++
	matched := map[string]struct{}{}

	if pred.Multi {
		for issueID, props := range m.multis {
			for _, row := range props[pred.PropertyID] {
				if matchString(row.Value, pred) {
					matched[issueID] = struct{}{}
				}
			}
		}
	} else {
		for issueID, props := range m.singles {
			row, ok := props[pred.PropertyID]
			if !ok {
				continue
			}
			if len(pred.Numbers) > 0 {
				if row.NumberValue != nil && containsFloat(pred.Numbers, *row.NumberValue) {
					matched[issueID] = struct{}{}
				}
				continue
			}
			if row.Value != nil && matchString(*row.Value, pred) {
				matched[issueID] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(matched))
	for id := range matched {
		if iss, ok := m.issues[id]; ok && iss.WorkspaceID == workspaceID && iss.DeletedAt == nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func matchString(value string, pred model.ValuePredicate) bool {
	switch pred.Op {
	case model.OpEq:
		return len(pred.Values) > 0 && value == pred.Values[0]
	case model.OpIn:
		for _, want := range pred.Values {
			if value == want {
				return true
			}
		}
		return false
	case model.OpContains:
		return len(pred.Values) > 0 && strings.Contains(value, pred.Values[0])
	case model.OpStartsWith:
		return len(pred.Values) > 0 && strings.HasPrefix(value, pred.Values[0])
	case model.OpEndsWith:
		return len(pred.Values) > 0 && strings.HasSuffix(value, pred.Values[0])
	}
	return false
}

func containsFloat(haystack []float64, needle float64) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func (m *mockStore) EnsureCounter(_ context.Context, entityName string) error {
	if _, ok := m.counters[entityName]; !ok {
		m.counters[entityName] = 0
	}
	return nil
}

func (m *mockStore) GetCounter(_ context.Context, entityName string) (int64, error) {
	v, ok := m.counters[entityName]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return v, nil
}

func (m *mockStore) CompareAndSwapCounter(_ context.Context, entityName string, old, new int64) (bool, error) {
	m.casCalls++
	if m.casFailures > 0 {
		m.casFailures--
		return false, nil
	}
	if m.counters[entityName] != old {
		return false, nil
	}
	m.counters[entityName] = new
	return true, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
