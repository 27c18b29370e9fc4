package store

import (
	"context"
	"time"

	"github.com/orehub/minetrack/internal/model"
)

// ListIssuesQuery selects a page of issue ids.
// IDs narrows the result to an already-computed candidate set (nil means
// unconstrained; an empty non-nil set matches nothing). Sort keys are
// evaluated against the EAV value rows, left-to-right.
type ListIssuesQuery struct {
	WorkspaceID string
	IDs         []string
	Sort        []model.SortKey
	Limit       int
	Offset      int
}

// Store defines the persistence interface for issues, property
// definitions, EAV value rows, and allocation counters. All reads exclude
// soft-deleted rows.
type Store interface {
	// Issues
	CreateIssues(ctx context.Context, issues []*model.Issue) error
	GetIssue(ctx context.Context, workspaceID, id string) (*model.Issue, error)
	// GetIssues fetches many issues at once, returned in the order of ids.
	// Missing or soft-deleted ids are skipped without error.
	GetIssues(ctx context.Context, workspaceID string, ids []string) ([]*model.Issue, error)
	TouchIssue(ctx context.Context, id string, at time.Time) error
	SoftDeleteIssue(ctx context.Context, workspaceID, id string, at time.Time) error
	ListIssueIDs(ctx context.Context, q ListIssuesQuery) ([]string, error)
	CountIssues(ctx context.Context, workspaceID string) (int, error)

	// Property definitions
	CreatePropertyDefinition(ctx context.Context, def *model.PropertyDefinition) error
	GetPropertyDefinition(ctx context.Context, workspaceID, id string) (*model.PropertyDefinition, error)
	ListPropertyDefinitions(ctx context.Context, workspaceID string) ([]*model.PropertyDefinition, error)
	SoftDeletePropertyDefinition(ctx context.Context, workspaceID, id string, at time.Time) error

	// Value rows
	InsertSingleValues(ctx context.Context, rows []model.SingleValue) error
	InsertMultiValues(ctx context.Context, rows []model.MultiValue) error
	UpsertSingleValue(ctx context.Context, row model.SingleValue) error
	AppendMultiValues(ctx context.Context, issueID, propertyID string, rows []model.MultiValue) error
	ReplaceMultiValues(ctx context.Context, issueID, propertyID string, rows []model.MultiValue) error
	DeleteMultiValues(ctx context.Context, issueID, propertyID string) error
	GetSingleValues(ctx context.Context, issueIDs []string) ([]model.SingleValue, error)
	GetMultiValues(ctx context.Context, issueIDs []string) ([]model.MultiValue, error)
	// FindIssueIDsByPredicate returns the ids of live issues in the
	// workspace with at least one live value row matching the predicate.
	FindIssueIDsByPredicate(ctx context.Context, workspaceID string, pred model.ValuePredicate) ([]string, error)

	// Allocation counters
	EnsureCounter(ctx context.Context, entityName string) error
	GetCounter(ctx context.Context, entityName string) (int64, error)
	// CompareAndSwapCounter advances the counter only if it still holds old.
	// It reports false, nil when another writer won the race.
	CompareAndSwapCounter(ctx context.Context, entityName string, old, new int64) (bool, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
