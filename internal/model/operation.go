package model

// OpKind identifies a mutation operation on one property of an issue.
// Scalar types support set and remove; list types support add, update,
// and remove.
type OpKind string

const (
	OpSet    OpKind = "set"    // replace the scalar value
	OpRemove OpKind = "remove" // clear the value (scalar: null row; list: all rows)
	OpAdd    OpKind = "add"    // append one element to a list
	OpUpdate OpKind = "update" // replace the whole list
)

// String returns the string representation of the operation kind.
func (k OpKind) String() string {
	return string(k)
}

// IsValid checks whether the operation kind is a known value.
func (k OpKind) IsValid() bool {
	switch k {
	case OpSet, OpRemove, OpAdd, OpUpdate:
		return true
	}
	return false
}

// Operation is one ordered mutation step of an update request. Value
// carries the payload for set/add; Values carries the replacement list for
// update; remove has no payload.
type Operation struct {
	PropertyID string `json:"property_id"`
	Kind       OpKind `json:"kind"`
	Value      any    `json:"value,omitempty"`
	Values     []any  `json:"values,omitempty"`
}

// ValueDiff is the row-level change set an update processor produces for
// one operation. The caller applies it inside the surrounding transaction.
//
// A list remove or replace deletes every live row for the (issue, property)
// pair, unbounded by position; appends are assigned positions by the store
// (current max + 1 onward).
type ValueDiff struct {
	SingleUpsert   *SingleValue // set, or scalar remove as an explicit null
	MultiAppends   []MultiValue // add
	MultiReplace   []MultiValue // update: the full new set, positions 0..n-1
	MultiDeleteAll bool         // list remove, and implied by MultiReplace
}

// Empty reports whether applying the diff would touch no rows.
func (d ValueDiff) Empty() bool {
	return d.SingleUpsert == nil && len(d.MultiAppends) == 0 &&
		len(d.MultiReplace) == 0 && !d.MultiDeleteAll
}
