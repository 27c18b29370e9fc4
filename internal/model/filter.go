package model

// Operator is a filter comparison operator. Each property type supports a
// deliberately small, fixed subset.
type Operator string

const (
	OpEq         Operator = "eq"
	OpIn         Operator = "in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
)

// String returns the string representation of the operator.
func (o Operator) String() string {
	return string(o)
}

// IsValid checks whether the operator is a known value.
func (o Operator) IsValid() bool {
	switch o {
	case OpEq, OpIn, OpContains, OpStartsWith, OpEndsWith:
		return true
	}
	return false
}

// FilterCondition is one per-property predicate of a listing request.
// Conditions compose conjunctively; the engine intersects their matching
// issue-id sets. Ephemeral, never persisted.
type FilterCondition struct {
	PropertyID   string       `json:"property_id"`
	PropertyType PropertyType `json:"property_type"`
	Operator     Operator     `json:"operator"`
	Value        any          `json:"value"`
}

// ValuePredicate is the storage-level form a filter transformer produces:
// which value table to search and how to match rows in it. It deliberately
// carries no SQL so backends other than the correlated-subquery Postgres
// store can evaluate it.
type ValuePredicate struct {
	PropertyID string
	Multi      bool // match multi-value rows instead of single-value rows
	Op         Operator
	Values     []string  // string comparisons (eq uses Values[0])
	Numbers    []float64 // numeric comparisons against number_value
}

// SortKey orders a listing by one property's value. Numeric keys compare
// the number_value projection; everything else compares the string value.
// Keys compose left-to-right as tie-breakers.
type SortKey struct {
	PropertyID string `json:"property_id"`
	Numeric    bool   `json:"numeric,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}
