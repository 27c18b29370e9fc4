package model

import (
	"sort"
	"time"
)

// System property IDs. These are synthesized by the engine on every issue
// and are readonly for callers; they flow through the same EAV filter and
// sort machinery as user-defined properties.
const (
	SystemPropertyID        = "ID"
	SystemPropertyCreatedAt = "CREATED_AT"
	SystemPropertyUpdatedAt = "UPDATED_AT"
)

// SystemProperties returns the builtin property definitions shared by every
// workspace. They are not persisted; the engine resolves them before
// consulting the store.
func SystemProperties() []*PropertyDefinition {
	return []*PropertyDefinition{
		{ID: SystemPropertyID, Name: "ID", Type: TypeNumber, Readonly: true},
		{ID: SystemPropertyCreatedAt, Name: "Created at", Type: TypeDatetime, Readonly: true},
		{ID: SystemPropertyUpdatedAt, Name: "Updated at", Type: TypeDatetime, Readonly: true},
	}
}

// Issue is the core work-item record. The row itself is nearly empty by
// design: everything a caller sees as an attribute lives in the value
// tables, keyed by property id.
type Issue struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	Seq         int64      `json:"seq"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Properties is populated by hydration, not stored on the issues table.
	Properties []PropertyValue `json:"properties,omitempty"`
}

// SingleValue is one EAV row for a scalar-valued property. At most one
// live row exists per (issue, property). NumberValue is a redundant
// numeric projection of Value kept so numeric ORDER BY needs no casts.
type SingleValue struct {
	IssueID      string       `json:"issue_id"`
	PropertyID   string       `json:"property_id"`
	PropertyType PropertyType `json:"property_type"`
	Value        *string      `json:"value"`
	NumberValue  *float64     `json:"number_value,omitempty"`
}

// MultiValue is one EAV row for a list-valued property. Position defines
// stable ordering and is the unit of addressing for partial updates.
type MultiValue struct {
	IssueID      string       `json:"issue_id"`
	PropertyID   string       `json:"property_id"`
	PropertyType PropertyType `json:"property_type"`
	Value        string       `json:"value"`
	NumberValue  *float64     `json:"number_value,omitempty"`
	Position     int          `json:"position"`
}

// RowSet is the storage form a creation processor produces for one raw
// property value: zero-or-one single rows or zero-or-more multi rows.
type RowSet struct {
	Singles []SingleValue
	Multis  []MultiValue
}

// PropertyValue is the assembled, caller-facing view of one property on
// one issue. Scalar types populate Value (and Number when numeric); list
// types populate Values in position order.
type PropertyValue struct {
	PropertyID string       `json:"property_id"`
	Type       PropertyType `json:"type"`
	Value      *string      `json:"value,omitempty"`
	Number     *float64     `json:"number,omitempty"`
	Values     []string     `json:"values,omitempty"`
}

// AssemblePropertyValues merges raw value rows into per-issue property
// value lists. Multi rows must already be position-ordered per property,
// which the store's read queries guarantee. Output lists are sorted by
// property id for deterministic results.
func AssemblePropertyValues(singles []SingleValue, multis []MultiValue) map[string][]PropertyValue {
	out := make(map[string][]PropertyValue)

	for _, sv := range singles {
		out[sv.IssueID] = append(out[sv.IssueID], PropertyValue{
			PropertyID: sv.PropertyID,
			Type:       sv.PropertyType,
			Value:      sv.Value,
			Number:     sv.NumberValue,
		})
	}

	// Group multi rows by (issue, property), preserving row order.
	type key struct{ issueID, propertyID string }
	grouped := make(map[key]*PropertyValue)
	var order []key
	for _, mv := range multis {
		k := key{mv.IssueID, mv.PropertyID}
		pv, ok := grouped[k]
		if !ok {
			pv = &PropertyValue{PropertyID: mv.PropertyID, Type: mv.PropertyType}
			grouped[k] = pv
			order = append(order, k)
		}
		pv.Values = append(pv.Values, mv.Value)
	}
	for _, k := range order {
		out[k.issueID] = append(out[k.issueID], *grouped[k])
	}

	for id := range out {
		vals := out[id]
		sort.Slice(vals, func(i, j int) bool { return vals[i].PropertyID < vals[j].PropertyID })
		out[id] = vals
	}
	return out
}
