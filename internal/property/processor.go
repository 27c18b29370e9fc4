// Package property implements the type-polymorphic property engine: per-type
// creation processors, update processors, and filter transformers, dispatched
// through an immutable registry built once at startup.
package property

import (
	"github.com/orehub/minetrack/internal/model"
)

// CreationProcessor validates a raw input value for a new issue and
// transforms it into storage rows. ValidateFormat checks structure only;
// ValidateRules checks the definition's configuration; ToRows is a pure
// transformation and assumes both validations passed.
type CreationProcessor interface {
	ValidateFormat(def *model.PropertyDefinition, raw any) error
	ValidateRules(def *model.PropertyDefinition, raw any) error
	ToRows(def *model.PropertyDefinition, issueID string, raw any) (model.RowSet, error)
}

// UpdateProcessor validates one mutation operation against an existing
// issue and produces the row-level diff to apply. An operation kind the
// property type does not support fails with UnsupportedOperationError from
// ValidateFormat.
type UpdateProcessor interface {
	ValidateFormat(def *model.PropertyDefinition, op model.Operation) error
	ValidateRules(def *model.PropertyDefinition, op model.Operation) error
	ToDiff(def *model.PropertyDefinition, issueID string, op model.Operation) (model.ValueDiff, error)
}

// FilterTransformer translates a filter condition into a storage-level
// predicate. Preprocess normalizes the value shape (scalars to one-element
// lists, trimming, string-to-number coercion); Validate rejects unsupported
// operators; Transform assumes both ran.
type FilterTransformer interface {
	Preprocess(cond model.FilterCondition) model.FilterCondition
	Validate(cond model.FilterCondition) error
	Transform(cond model.FilterCondition) (model.ValuePredicate, error)
}
