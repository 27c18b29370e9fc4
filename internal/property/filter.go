package property

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orehub/minetrack/internal/model"
)

// textFilter matches scalar text values with eq, contains, startsWith and
// endsWith.
type textFilter struct{}

func (f *textFilter) Preprocess(cond model.FilterCondition) model.FilterCondition {
	if s, ok := cond.Value.(string); ok {
		cond.Value = strings.TrimSpace(s)
	}
	return cond
}

func (f *textFilter) Validate(cond model.FilterCondition) error {
	switch cond.Operator {
	case model.OpEq, model.OpContains, model.OpStartsWith, model.OpEndsWith:
	default:
		return &model.UnsupportedOperatorError{Type: cond.PropertyType, Op: cond.Operator}
	}
	if _, ok := cond.Value.(string); !ok {
		return model.NewFormatError("filter value must be a string")
	}
	return nil
}

func (f *textFilter) Transform(cond model.FilterCondition) (model.ValuePredicate, error) {
	return model.ValuePredicate{
		PropertyID: cond.PropertyID,
		Op:         cond.Operator,
		Values:     []string{cond.Value.(string)},
	}, nil
}

// membershipFilter matches option-like values (select, multi_select,
// miners, user) with in only; eq is normalized to a one-element in during
// preprocessing so both share one code path.
type membershipFilter struct {
	multi bool
}

func (f *membershipFilter) Preprocess(cond model.FilterCondition) model.FilterCondition {
	if cond.Operator == model.OpEq {
		cond.Operator = model.OpIn
	}
	if s, ok := cond.Value.(string); ok {
		cond.Value = []string{s}
	}
	return cond
}

func (f *membershipFilter) Validate(cond model.FilterCondition) error {
	if cond.Operator != model.OpIn {
		return &model.UnsupportedOperatorError{Type: cond.PropertyType, Op: cond.Operator}
	}
	vals, ok := asStringList(cond.Value)
	if !ok {
		return model.NewFormatError("filter value must be a string or a list of strings")
	}
	if len(vals) == 0 {
		return model.NewFormatError("filter value must not be empty")
	}
	return nil
}

func (f *membershipFilter) Transform(cond model.FilterCondition) (model.ValuePredicate, error) {
	vals, _ := asStringList(cond.Value)
	return model.ValuePredicate{
		PropertyID: cond.PropertyID,
		Multi:      f.multi,
		Op:         model.OpIn,
		Values:     vals,
	}, nil
}

// numberFilter matches numeric values (the system sequence-number
// property) with eq and in, coercing stringly-typed ids to numbers.
type numberFilter struct{}

func (f *numberFilter) Preprocess(cond model.FilterCondition) model.FilterCondition {
	if cond.Operator == model.OpEq {
		cond.Operator = model.OpIn
	}
	switch cond.Value.(type) {
	case []any, []string:
	default:
		cond.Value = []any{cond.Value}
	}
	return cond
}

func (f *numberFilter) Validate(cond model.FilterCondition) error {
	if cond.Operator != model.OpIn {
		return &model.UnsupportedOperatorError{Type: cond.PropertyType, Op: cond.Operator}
	}
	nums, err := condNumbers(cond)
	if err != nil {
		return err
	}
	if len(nums) == 0 {
		return model.NewFormatError("filter value must not be empty")
	}
	return nil
}

func (f *numberFilter) Transform(cond model.FilterCondition) (model.ValuePredicate, error) {
	nums, err := condNumbers(cond)
	if err != nil {
		return model.ValuePredicate{}, err
	}
	return model.ValuePredicate{
		PropertyID: cond.PropertyID,
		Op:         model.OpIn,
		Numbers:    nums,
	}, nil
}

func condNumbers(cond model.FilterCondition) ([]float64, error) {
	var raw []any
	switch v := cond.Value.(type) {
	case []any:
		raw = v
	case []string:
		raw = make([]any, len(v))
		for i, s := range v {
			raw[i] = s
		}
	default:
		raw = []any{v}
	}

	nums := make([]float64, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case float64:
			nums = append(nums, v)
		case int:
			nums = append(nums, float64(v))
		case int64:
			nums = append(nums, float64(v))
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, model.NewFormatError(fmt.Sprintf("%q is not a number", v))
			}
			nums = append(nums, n)
		default:
			return nil, model.NewFormatError("filter value must be numeric")
		}
	}
	return nums, nil
}

// datetimeFilter covers the system timestamp properties, which are
// sortable but not filterable; every operator is rejected.
type datetimeFilter struct{}

func (f *datetimeFilter) Preprocess(cond model.FilterCondition) model.FilterCondition {
	return cond
}

func (f *datetimeFilter) Validate(cond model.FilterCondition) error {
	return &model.UnsupportedOperatorError{Type: cond.PropertyType, Op: cond.Operator}
}

func (f *datetimeFilter) Transform(cond model.FilterCondition) (model.ValuePredicate, error) {
	return model.ValuePredicate{}, &model.UnsupportedOperatorError{Type: cond.PropertyType, Op: cond.Operator}
}

// defaultFilter is the degradation path for property types with no
// registered transformer: match the raw value as a string, equality only.
type defaultFilter struct{}

func (f *defaultFilter) Preprocess(cond model.FilterCondition) model.FilterCondition {
	return cond
}

func (f *defaultFilter) Validate(cond model.FilterCondition) error {
	if cond.Operator != model.OpEq {
		return &model.UnsupportedOperatorError{Type: cond.PropertyType, Op: cond.Operator}
	}
	return nil
}

func (f *defaultFilter) Transform(cond model.FilterCondition) (model.ValuePredicate, error) {
	return model.ValuePredicate{
		PropertyID: cond.PropertyID,
		Op:         model.OpEq,
		Values:     []string{fmt.Sprint(cond.Value)},
	}, nil
}
