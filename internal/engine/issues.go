package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/orehub/minetrack/internal/events"
	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/sequence"
	"github.com/orehub/minetrack/internal/store"
)

// CreateIssueInput is one issue of a batch creation request: property id
// to raw value, in whatever shape the caller's transport decoded (strings,
// string lists).
type CreateIssueInput struct {
	Properties map[string]any `json:"properties"`
}

// IssueResult reports the outcome for one issue of a batch. In a rejected
// batch, inputs that were individually valid come back with Success false
// and no messages.
type IssueResult struct {
	Success bool         `json:"success"`
	Issue   *model.Issue `json:"issue,omitempty"`
	Errors  []string     `json:"errors,omitempty"`
}

// CreateIssues creates a batch of issues atomically. Every input is
// validated first so the caller gets the full message list per issue;
// sequence numbers are only allocated, and rows only written, when the
// whole batch is valid. A batch with any invalid issue creates nothing.
func (e *Engine) CreateIssues(ctx context.Context, workspaceID string, inputs []CreateIssueInput) ([]IssueResult, error) {
	results := make([]IssueResult, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	// Phase one: validate everything and stage the value rows. Issue ids
	// are generated up front because the rows reference them.
	type staged struct {
		issueID string
		rows    model.RowSet
	}
	stagedRows := make([]staged, len(inputs))
	valid := true

	for i, input := range inputs {
		issueID, err := e.newID()
		if err != nil {
			return nil, fmt.Errorf("generating issue id: %w", err)
		}
		st := staged{issueID: issueID}

		for propertyID, raw := range input.Properties {
			def, err := e.resolveDefinition(ctx, workspaceID, propertyID)
			if err != nil {
				var sto *model.StorageError
				if errors.As(err, &sto) {
					return nil, err
				}
				results[i].Errors = append(results[i].Errors, model.UserMessages(err)...)
				continue
			}
			if def.Readonly {
				results[i].Errors = append(results[i].Errors,
					fmt.Sprintf("property %q is readonly", propertyID))
				continue
			}

			rows, err := e.props.ProcessCreate(def, st.issueID, raw)
			if err != nil {
				results[i].Errors = append(results[i].Errors, model.UserMessages(err)...)
				continue
			}
			st.rows.Singles = append(st.rows.Singles, rows.Singles...)
			st.rows.Multis = append(st.rows.Multis, rows.Multis...)
		}

		if len(results[i].Errors) > 0 {
			valid = false
		}
		stagedRows[i] = st
	}

	if !valid {
		return results, nil
	}

	seqs, err := e.seq.AllocateIDs(ctx, sequence.EntityIssue, len(inputs))
	if err != nil {
		return nil, err
	}

	now := e.now()
	issues := make([]*model.Issue, len(inputs))
	var singles []model.SingleValue
	var multis []model.MultiValue
	for i, st := range stagedRows {
		iss := &model.Issue{
			ID:          st.issueID,
			WorkspaceID: workspaceID,
			Seq:         seqs[i],
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		issues[i] = iss
		singles = append(singles, systemRows(iss)...)
		singles = append(singles, st.rows.Singles...)
		multis = append(multis, st.rows.Multis...)
	}

	err = e.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateIssues(ctx, issues); err != nil {
			return err
		}
		if err := tx.InsertSingleValues(ctx, singles); err != nil {
			return err
		}
		return tx.InsertMultiValues(ctx, multis)
	})
	if err != nil {
		return nil, &model.StorageError{Op: "create issues", Err: err}
	}

	values := model.AssemblePropertyValues(singles, multis)
	for i, iss := range issues {
		iss.Properties = values[iss.ID]
		results[i] = IssueResult{Success: true, Issue: iss}
		e.publish(ctx, events.TopicIssueCreated, events.IssueCreated{Issue: iss})
	}

	e.logger.Info("created issues", "workspace_id", workspaceID, "count", len(issues))
	return results, nil
}

// GetIssue fetches one issue with its property values hydrated.
func (e *Engine) GetIssue(ctx context.Context, workspaceID, id string) (*model.Issue, error) {
	iss, err := e.store.GetIssue(ctx, workspaceID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Kind: "issue", ID: id}
	}
	if err != nil {
		return nil, &model.StorageError{Op: "get issue", Err: err}
	}
	hydrated, err := e.hydrate(ctx, []*model.Issue{iss})
	if err != nil {
		return nil, err
	}
	return hydrated[0], nil
}

// UpdateIssue applies an ordered list of property operations to one issue.
// Every referenced property is resolved and checked before any processor
// runs; processing is fail-fast in operation order. All row changes and
// the timestamp bump land in one transaction.
func (e *Engine) UpdateIssue(ctx context.Context, workspaceID, issueID string, ops []model.Operation) (IssueResult, error) {
	if _, err := e.store.GetIssue(ctx, workspaceID, issueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IssueResult{}, &model.NotFoundError{Kind: "issue", ID: issueID}
		}
		return IssueResult{}, &model.StorageError{Op: "get issue", Err: err}
	}

	defs := make([]*model.PropertyDefinition, len(ops))
	for i, op := range ops {
		def, err := e.resolveDefinition(ctx, workspaceID, op.PropertyID)
		if err != nil {
			var sto *model.StorageError
			if errors.As(err, &sto) {
				return IssueResult{}, err
			}
			return IssueResult{Errors: model.UserMessages(err)}, nil
		}
		if def.Readonly {
			return IssueResult{Errors: []string{
				fmt.Sprintf("property %q is readonly", op.PropertyID),
			}}, nil
		}
		defs[i] = def
	}

	diffs := make([]model.ValueDiff, 0, len(ops))
	touched := make([]string, 0, len(ops))
	for i, op := range ops {
		diff, err := e.props.ProcessUpdate(defs[i], issueID, op)
		if err != nil {
			return IssueResult{Errors: model.UserMessages(err)}, nil
		}
		if diff.Empty() {
			continue
		}
		diffs = append(diffs, diff)
		touched = append(touched, op.PropertyID)
	}

	now := e.now()
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		for i, diff := range diffs {
			if err := applyDiff(ctx, tx, issueID, touched[i], diff); err != nil {
				return err
			}
		}
		if err := tx.TouchIssue(ctx, issueID, now); err != nil {
			return err
		}
		stamp := now.Format(time.RFC3339)
		return tx.UpsertSingleValue(ctx, model.SingleValue{
			IssueID:      issueID,
			PropertyID:   model.SystemPropertyUpdatedAt,
			PropertyType: model.TypeDatetime,
			Value:        &stamp,
		})
	})
	if err != nil {
		return IssueResult{}, &model.StorageError{Op: "update issue", Err: err}
	}

	iss, err := e.GetIssue(ctx, workspaceID, issueID)
	if err != nil {
		return IssueResult{}, err
	}
	e.publish(ctx, events.TopicIssueUpdated, events.IssueUpdated{Issue: iss, Properties: touched})
	e.logger.Info("updated issue", "workspace_id", workspaceID, "issue_id", issueID, "operations", len(ops))
	return IssueResult{Success: true, Issue: iss}, nil
}

// applyDiff translates one processor diff into store calls. Replace implies
// delete-all, so MultiDeleteAll alone only fires for a plain list remove.
func applyDiff(ctx context.Context, tx store.Store, issueID, propertyID string, diff model.ValueDiff) error {
	if diff.SingleUpsert != nil {
		return tx.UpsertSingleValue(ctx, *diff.SingleUpsert)
	}
	if len(diff.MultiReplace) > 0 {
		return tx.ReplaceMultiValues(ctx, issueID, propertyID, diff.MultiReplace)
	}
	if diff.MultiDeleteAll {
		return tx.DeleteMultiValues(ctx, issueID, propertyID)
	}
	if len(diff.MultiAppends) > 0 {
		return tx.AppendMultiValues(ctx, issueID, propertyID, diff.MultiAppends)
	}
	return nil
}

// DeleteIssue soft-deletes an issue. Value rows are left in place; every
// read already excludes rows whose parent issue is gone.
func (e *Engine) DeleteIssue(ctx context.Context, workspaceID, id string) error {
	err := e.store.SoftDeleteIssue(ctx, workspaceID, id, e.now())
	if errors.Is(err, sql.ErrNoRows) {
		return &model.NotFoundError{Kind: "issue", ID: id}
	}
	if err != nil {
		return &model.StorageError{Op: "delete issue", Err: err}
	}
	e.publish(ctx, events.TopicIssueDeleted, events.IssueDeleted{WorkspaceID: workspaceID, IssueID: id})
	e.logger.Info("deleted issue", "workspace_id", workspaceID, "issue_id", id)
	return nil
}
