package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// PropertyType identifies the behavior of a property: how its values are
// validated, stored, filtered, and sorted.
type PropertyType string

const (
	TypeText        PropertyType = "text"
	TypeRichText    PropertyType = "rich_text"
	TypeSelect      PropertyType = "select"
	TypeMultiSelect PropertyType = "multi_select"
	TypeMiners      PropertyType = "miners"
	TypeUser        PropertyType = "user"

	// System-only types. Values of these types are written by the engine
	// itself (sequence number, timestamps), never by callers; they exist so
	// the filter/sort machinery can treat system columns like any property.
	TypeNumber   PropertyType = "number"
	TypeDatetime PropertyType = "datetime"
)

// String returns the string representation of the property type.
func (t PropertyType) String() string {
	return string(t)
}

// IsValid checks whether the property type is a known value.
func (t PropertyType) IsValid() bool {
	switch t {
	case TypeText, TypeRichText, TypeSelect, TypeMultiSelect, TypeMiners,
		TypeUser, TypeNumber, TypeDatetime:
		return true
	}
	return false
}

// IsMulti reports whether values of this type are stored as ordered
// multi-value rows rather than a single row per issue.
func (t PropertyType) IsMulti() bool {
	return t == TypeMultiSelect || t == TypeMiners
}

// PropertyDefinition describes one attribute an issue may carry: its type
// and the validation configuration processors enforce. Definitions are
// immutable reference data; they are soft-deleted, never removed while
// value rows reference them.
type PropertyDefinition struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspace_id"`
	Name        string         `json:"name"`
	Type        PropertyType   `json:"type"`
	Config      PropertyConfig `json:"config,omitempty"`
	Readonly    bool           `json:"readonly"`
	Nullable    bool           `json:"nullable"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

// PropertyConfig is the per-type validation configuration, decoded once at
// definition load time. Exactly one concrete type corresponds to each
// PropertyType.
type PropertyConfig interface {
	isPropertyConfig()
}

// TextConfig configures text properties.
type TextConfig struct {
	MaxLength int `json:"max_length,omitempty"` // 0 = unlimited
}

// RichTextConfig configures rich text properties.
type RichTextConfig struct {
	MaxLength int `json:"max_length,omitempty"` // 0 = unlimited
}

// SelectConfig configures single-select properties.
type SelectConfig struct {
	Options []string `json:"options"`
}

// MultiSelectConfig configures multi-select properties.
type MultiSelectConfig struct {
	Options       []string `json:"options"`
	MaxSelections int      `json:"max_selections,omitempty"` // 0 = unlimited
}

// MinersConfig configures miner-list properties.
type MinersConfig struct {
	MaxMiners int `json:"max_miners,omitempty"` // 0 = unlimited
}

// UserConfig configures user properties. It has no options today but keeps
// the config union total over user-writable types.
type UserConfig struct{}

func (TextConfig) isPropertyConfig()        {}
func (RichTextConfig) isPropertyConfig()    {}
func (SelectConfig) isPropertyConfig()      {}
func (MultiSelectConfig) isPropertyConfig() {}
func (MinersConfig) isPropertyConfig()      {}
func (UserConfig) isPropertyConfig()        {}

// DecodeConfig parses the raw JSON configuration for the given property
// type into its typed form. A nil or empty raw config yields the type's
// zero-value config. Unknown JSON keys are rejected.
//
// Configs travel as value types everywhere: the processors, the engine's
// definition validation, and the CLI all type-switch on the value form.
func DecodeConfig(t PropertyType, raw json.RawMessage) (PropertyConfig, error) {
	decode := func(dst any) error {
		if len(raw) == 0 {
			return nil
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("decode %s config: %w", t, err)
		}
		return nil
	}

	switch t {
	case TypeText:
		var cfg TextConfig
		if err := decode(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case TypeRichText:
		var cfg RichTextConfig
		if err := decode(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case TypeSelect:
		var cfg SelectConfig
		if err := decode(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case TypeMultiSelect:
		var cfg MultiSelectConfig
		if err := decode(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case TypeMiners:
		var cfg MinersConfig
		if err := decode(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case TypeUser:
		var cfg UserConfig
		if err := decode(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case TypeNumber, TypeDatetime:
		// System types carry no configuration.
		if len(raw) > 0 && string(raw) != "null" && string(raw) != "{}" {
			return nil, fmt.Errorf("%s properties take no config", t)
		}
		return nil, nil
	default:
		return nil, &UnsupportedPropertyTypeError{Type: t}
	}
}

// EncodeConfig is the inverse of DecodeConfig, used when persisting a
// definition. A nil config encodes as null.
func EncodeConfig(cfg PropertyConfig) (json.RawMessage, error) {
	if cfg == nil {
		return nil, nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
