package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

// FilterInput is one caller-supplied filter condition. The engine resolves
// the property type before handing it to the filter transformers.
type FilterInput struct {
	PropertyID string         `json:"property_id"`
	Operator   model.Operator `json:"operator"`
	Value      any            `json:"value"`
}

// SortInput orders the listing by one property. The engine decides whether
// the key compares numerically from the property's type.
type SortInput struct {
	PropertyID string `json:"property_id"`
	Descending bool   `json:"descending"`
}

// ListIssuesRequest describes one listing query. Filters compose
// conjunctively. Limit 0 means no limit.
type ListIssuesRequest struct {
	WorkspaceID string
	Filters     []FilterInput
	Sort        []SortInput
	Limit       int
	Offset      int
}

// ListIssuesResult is one page of hydrated issues plus the total match
// count before pagination.
type ListIssuesResult struct {
	Issues []*model.Issue `json:"issues"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ListIssues runs a filtered, sorted, paginated listing. Each filter is
// transformed into a value predicate and resolved to an issue-id set; the
// sets are intersected with a short-circuit as soon as the intersection is
// empty. The surviving ids are then ordered and paged in SQL, and the page
// is hydrated with its property values.
func (e *Engine) ListIssues(ctx context.Context, req ListIssuesRequest) (*ListIssuesResult, error) {
	candidates, filtered, err := e.filterIssueIDs(ctx, req.WorkspaceID, req.Filters)
	if err != nil {
		return nil, err
	}

	result := &ListIssuesResult{Issues: []*model.Issue{}, Limit: req.Limit, Offset: req.Offset}
	if filtered && len(candidates) == 0 {
		return result, nil
	}

	keys, err := e.sortKeys(ctx, req.WorkspaceID, req.Sort)
	if err != nil {
		return nil, err
	}

	ids, err := e.store.ListIssueIDs(ctx, store.ListIssuesQuery{
		WorkspaceID: req.WorkspaceID,
		IDs:         candidates,
		Sort:        keys,
		Limit:       req.Limit,
		Offset:      req.Offset,
	})
	if err != nil {
		return nil, &model.StorageError{Op: "list issues", Err: err}
	}

	if filtered {
		result.Total = len(candidates)
	} else {
		total, err := e.store.CountIssues(ctx, req.WorkspaceID)
		if err != nil {
			return nil, &model.StorageError{Op: "count issues", Err: err}
		}
		result.Total = total
	}

	issues, err := e.store.GetIssues(ctx, req.WorkspaceID, ids)
	if err != nil {
		return nil, &model.StorageError{Op: "get issues", Err: err}
	}
	result.Issues, err = e.hydrate(ctx, issues)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// filterIssueIDs resolves every filter to an id set and intersects them.
// The returned slice is nil when no filters were given (unconstrained);
// filtered distinguishes that from a real empty result.
func (e *Engine) filterIssueIDs(ctx context.Context, workspaceID string, filters []FilterInput) (ids []string, filtered bool, err error) {
	if len(filters) == 0 {
		return nil, false, nil
	}

	var current map[string]struct{}
	for _, f := range filters {
		def, err := e.resolveDefinition(ctx, workspaceID, f.PropertyID)
		if err != nil {
			return nil, true, err
		}

		pred, err := e.props.TransformFilter(model.FilterCondition{
			PropertyID:   f.PropertyID,
			PropertyType: def.Type,
			Operator:     f.Operator,
			Value:        f.Value,
		})
		if err != nil {
			return nil, true, err
		}

		matched, err := e.store.FindIssueIDsByPredicate(ctx, workspaceID, pred)
		if err != nil {
			return nil, true, &model.StorageError{Op: "filter issues", Err: err}
		}

		current = intersect(current, matched)
		if len(current) == 0 {
			return []string{}, true, nil
		}
	}

	out := make([]string, 0, len(current))
	for id := range current {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, true, nil
}

// intersect narrows the running set by one predicate's matches. A nil
// running set means this is the first predicate.
func intersect(current map[string]struct{}, matched []string) map[string]struct{} {
	next := make(map[string]struct{}, len(matched))
	for _, id := range matched {
		if current == nil {
			next[id] = struct{}{}
			continue
		}
		if _, ok := current[id]; ok {
			next[id] = struct{}{}
		}
	}
	return next
}

// sortKeys resolves the caller's sort inputs into storage sort keys.
// Numeric comparison is used for number-typed properties, which keeps the
// ID sequence in numeric rather than lexicographic order.
func (e *Engine) sortKeys(ctx context.Context, workspaceID string, inputs []SortInput) ([]model.SortKey, error) {
	keys := make([]model.SortKey, 0, len(inputs))
	for _, s := range inputs {
		def, err := e.resolveDefinition(ctx, workspaceID, s.PropertyID)
		if err != nil {
			return nil, err
		}
		keys = append(keys, model.SortKey{
			PropertyID: s.PropertyID,
			Numeric:    def.Type == model.TypeNumber,
			Descending: s.Descending,
		})
	}
	return keys, nil
}

// hydrate loads the value rows for a page of issues and attaches the
// assembled property values. The single and multi tables are read in
// parallel; each query covers the whole page in one round trip.
func (e *Engine) hydrate(ctx context.Context, issues []*model.Issue) ([]*model.Issue, error) {
	if len(issues) == 0 {
		return issues, nil
	}

	ids := make([]string, len(issues))
	for i, iss := range issues {
		ids[i] = iss.ID
	}

	var (
		singles []model.SingleValue
		multis  []model.MultiValue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		singles, err = e.store.GetSingleValues(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		multis, err = e.store.GetMultiValues(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &model.StorageError{Op: "hydrate issues", Err: err}
	}

	values := model.AssemblePropertyValues(singles, multis)
	for _, iss := range issues {
		iss.Properties = values[iss.ID]
	}
	return issues, nil
}
