package property

import (
	"github.com/orehub/minetrack/internal/model"
)

// asString coerces a raw JSON-decoded value to an optional string.
// nil is accepted (absent value); anything other than a string is not.
func asString(raw any) (*string, bool) {
	if raw == nil {
		return nil, true
	}
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	return &s, true
}

// asStringList coerces a raw JSON-decoded value to a string list.
// nil is accepted as the empty list. Both []string and []any-of-strings are
// accepted since encoding/json produces the latter.
func asStringList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []any:
		out := make([]string, len(v))
		for i, el := range v {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// scalarRows builds the single-value row set for a scalar property.
// An absent value still yields an explicit null row, so "no value yet"
// stays distinguishable from "never evaluated".
func scalarRows(def *model.PropertyDefinition, issueID string, val *string) model.RowSet {
	return model.RowSet{Singles: []model.SingleValue{{
		IssueID:      issueID,
		PropertyID:   def.ID,
		PropertyType: def.Type,
		Value:        val,
	}}}
}

// listRows builds position-ordered multi-value rows for a list property.
// An empty input yields no rows.
func listRows(def *model.PropertyDefinition, issueID string, vals []string) []model.MultiValue {
	rows := make([]model.MultiValue, 0, len(vals))
	for i, v := range vals {
		rows = append(rows, model.MultiValue{
			IssueID:      issueID,
			PropertyID:   def.ID,
			PropertyType: def.Type,
			Value:        v,
			Position:     i,
		})
	}
	return rows
}

// findDuplicate returns the first repeated element, if any.
func findDuplicate(vals []string) (string, bool) {
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	return "", false
}

// contains reports whether vals includes v.
func contains(vals []string, v string) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
