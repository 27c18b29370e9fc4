package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/orehub/minetrack/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanIssue scans a single row into a model.Issue.
// The row must contain columns in the order defined by issueColumns.
func scanIssue(row scannable) (*model.Issue, error) {
	var iss model.Issue
	var deletedAt sql.NullTime

	err := row.Scan(
		&iss.ID,
		&iss.WorkspaceID,
		&iss.Seq,
		&iss.CreatedAt,
		&iss.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		t := deletedAt.Time
		iss.DeletedAt = &t
	}
	return &iss, nil
}

// scanPropertyDefinition scans a row in definitionColumns order, decoding
// the raw config JSON into its typed form.
func scanPropertyDefinition(row scannable) (*model.PropertyDefinition, error) {
	var def model.PropertyDefinition
	var (
		typ       string
		config    []byte
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&def.ID,
		&def.WorkspaceID,
		&def.Name,
		&typ,
		&config,
		&def.Readonly,
		&def.Nullable,
		&def.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	def.Type = model.PropertyType(typ)
	if deletedAt.Valid {
		t := deletedAt.Time
		def.DeletedAt = &t
	}

	cfg, err := model.DecodeConfig(def.Type, json.RawMessage(config))
	if err != nil {
		return nil, err
	}
	def.Config = cfg

	return &def, nil
}

// scanSingleValue scans a row in singleValueColumns order.
func scanSingleValue(row scannable) (model.SingleValue, error) {
	var sv model.SingleValue
	var (
		typ    string
		value  sql.NullString
		number sql.NullFloat64
	)

	if err := row.Scan(&sv.IssueID, &sv.PropertyID, &typ, &value, &number); err != nil {
		return model.SingleValue{}, err
	}

	sv.PropertyType = model.PropertyType(typ)
	if value.Valid {
		v := value.String
		sv.Value = &v
	}
	if number.Valid {
		n := number.Float64
		sv.NumberValue = &n
	}
	return sv, nil
}

// scanMultiValue scans a row in multiValueColumns order.
func scanMultiValue(row scannable) (model.MultiValue, error) {
	var mv model.MultiValue
	var (
		typ    string
		number sql.NullFloat64
	)

	if err := row.Scan(&mv.IssueID, &mv.PropertyID, &typ, &mv.Value, &number, &mv.Position); err != nil {
		return model.MultiValue{}, err
	}

	mv.PropertyType = model.PropertyType(typ)
	if number.Valid {
		n := number.Float64
		mv.NumberValue = &n
	}
	return mv, nil
}

// nullStringPtr converts an optional string to sql.NullString.
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullFloatPtr converts an optional float to sql.NullFloat64.
func nullFloatPtr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// jsonbBytes converts raw JSON to a driver value, mapping empty to NULL.
func jsonbBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
