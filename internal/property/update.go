package property

import (
	"fmt"

	"github.com/orehub/minetrack/internal/model"
)

// scalarUpdater adapts a scalar creation processor to the update contract:
// set reuses the creation validation and produces an upsert; remove clears
// the value by upserting an explicit null row. Other operation kinds are
// unsupported on scalars.
type scalarUpdater struct {
	create CreationProcessor
}

func (u *scalarUpdater) ValidateFormat(def *model.PropertyDefinition, op model.Operation) error {
	switch op.Kind {
	case model.OpSet:
		return u.create.ValidateFormat(def, op.Value)
	case model.OpRemove:
		return nil
	default:
		return &model.UnsupportedOperationError{Type: def.Type, Op: op.Kind}
	}
}

func (u *scalarUpdater) ValidateRules(def *model.PropertyDefinition, op model.Operation) error {
	switch op.Kind {
	case model.OpSet:
		return u.create.ValidateRules(def, op.Value)
	case model.OpRemove:
		if !def.Nullable {
			return model.NewBusinessRuleError(
				fmt.Sprintf("%s requires a value and cannot be cleared", def.Name))
		}
	}
	return nil
}

func (u *scalarUpdater) ToDiff(def *model.PropertyDefinition, issueID string, op model.Operation) (model.ValueDiff, error) {
	var raw any
	if op.Kind == model.OpSet {
		raw = op.Value
	}
	rows, err := u.create.ToRows(def, issueID, raw)
	if err != nil {
		return model.ValueDiff{}, err
	}
	return model.ValueDiff{SingleUpsert: &rows.Singles[0]}, nil
}

// listUpdater adapts a list creation processor to the update contract.
// add appends one element (position resolved by the store); update replaces
// the whole set, trading write amplification for a simple diff; remove
// clears every live row for the pair, unbounded by position, so repeating
// it is a no-op rather than an error.
type listUpdater struct {
	create CreationProcessor
}

func (u *listUpdater) ValidateFormat(def *model.PropertyDefinition, op model.Operation) error {
	switch op.Kind {
	case model.OpAdd:
		if _, ok := op.Value.(string); !ok {
			return model.NewFormatError(fmt.Sprintf("%s elements must be strings", def.Name))
		}
		return nil
	case model.OpUpdate:
		return u.create.ValidateFormat(def, op.Values)
	case model.OpRemove:
		return nil
	default:
		return &model.UnsupportedOperationError{Type: def.Type, Op: op.Kind}
	}
}

func (u *listUpdater) ValidateRules(def *model.PropertyDefinition, op model.Operation) error {
	switch op.Kind {
	case model.OpAdd:
		// Validate the element as a one-element list; limits that depend on
		// the current row count cannot be checked here.
		return u.create.ValidateRules(def, []any{op.Value})
	case model.OpUpdate:
		return u.create.ValidateRules(def, op.Values)
	case model.OpRemove:
		if !def.Nullable {
			return model.NewBusinessRuleError(
				fmt.Sprintf("%s requires a value and cannot be cleared", def.Name))
		}
	}
	return nil
}

func (u *listUpdater) ToDiff(def *model.PropertyDefinition, issueID string, op model.Operation) (model.ValueDiff, error) {
	switch op.Kind {
	case model.OpAdd:
		el := op.Value.(string)
		return model.ValueDiff{MultiAppends: listRows(def, issueID, []string{el})}, nil
	case model.OpUpdate:
		rows, err := u.create.ToRows(def, issueID, op.Values)
		if err != nil {
			return model.ValueDiff{}, err
		}
		return model.ValueDiff{MultiDeleteAll: true, MultiReplace: rows.Multis}, nil
	default: // remove
		return model.ValueDiff{MultiDeleteAll: true}, nil
	}
}
