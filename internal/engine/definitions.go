package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/orehub/minetrack/internal/events"
	"github.com/orehub/minetrack/internal/model"
)

// CreatePropertyDefinition registers a new user-defined property.
// Definitions are immutable after creation; changing validation rules
// under existing values would silently invalidate them.
func (e *Engine) CreatePropertyDefinition(ctx context.Context, def *model.PropertyDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	def.CreatedAt = e.now()
	if err := e.store.CreatePropertyDefinition(ctx, def); err != nil {
		return &model.StorageError{Op: "create property definition", Err: err}
	}

	e.publish(ctx, events.TopicPropertyCreated, events.PropertyCreated{Definition: def})
	e.logger.Info("created property definition",
		"workspace_id", def.WorkspaceID, "property_id", def.ID, "type", def.Type.String())
	return nil
}

func validateDefinition(def *model.PropertyDefinition) error {
	var msgs []string
	if def.ID == "" {
		msgs = append(msgs, "property id is required")
	}
	for _, sys := range model.SystemProperties() {
		if def.ID == sys.ID {
			msgs = append(msgs, fmt.Sprintf("property id %q is reserved", def.ID))
		}
	}
	if def.Name == "" {
		msgs = append(msgs, "property name is required")
	}
	if !def.Type.IsValid() {
		msgs = append(msgs, fmt.Sprintf("unknown property type %q", def.Type))
	} else if def.Type == model.TypeNumber || def.Type == model.TypeDatetime {
		msgs = append(msgs, fmt.Sprintf("property type %q is reserved for system properties", def.Type))
	}
	msgs = append(msgs, validateConfig(def)...)
	if len(msgs) > 0 {
		return model.NewBusinessRuleError(msgs...)
	}
	return nil
}

// validateConfig checks the typed config against the definition's type.
// Option lists must be non-empty and free of duplicates; limits must not
// be negative.
func validateConfig(def *model.PropertyDefinition) []string {
	var msgs []string
	switch cfg := def.Config.(type) {
	case nil:
		// Type defaults apply.
	case model.TextConfig:
		if cfg.MaxLength < 0 {
			msgs = append(msgs, "max_length must not be negative")
		}
	case model.RichTextConfig:
		if cfg.MaxLength < 0 {
			msgs = append(msgs, "max_length must not be negative")
		}
	case model.SelectConfig:
		msgs = append(msgs, validateOptions(cfg.Options)...)
	case model.MultiSelectConfig:
		msgs = append(msgs, validateOptions(cfg.Options)...)
		if cfg.MaxSelections < 0 {
			msgs = append(msgs, "max_selections must not be negative")
		}
	case model.MinersConfig:
		if cfg.MaxMiners < 0 {
			msgs = append(msgs, "max_miners must not be negative")
		}
	case model.UserConfig:
	default:
		msgs = append(msgs, fmt.Sprintf("config does not match property type %q", def.Type))
	}
	return msgs
}

func validateOptions(options []string) []string {
	if len(options) == 0 {
		return []string{"at least one option is required"}
	}
	seen := make(map[string]struct{}, len(options))
	var msgs []string
	for _, opt := range options {
		if opt == "" {
			msgs = append(msgs, "options must not be empty strings")
			continue
		}
		if _, dup := seen[opt]; dup {
			msgs = append(msgs, fmt.Sprintf("duplicate option %q", opt))
		}
		seen[opt] = struct{}{}
	}
	return msgs
}

// GetPropertyDefinition fetches one definition, system properties included.
func (e *Engine) GetPropertyDefinition(ctx context.Context, workspaceID, id string) (*model.PropertyDefinition, error) {
	return e.resolveDefinition(ctx, workspaceID, id)
}

// ListPropertyDefinitions returns the system properties followed by the
// workspace's user-defined properties.
func (e *Engine) ListPropertyDefinitions(ctx context.Context, workspaceID string) ([]*model.PropertyDefinition, error) {
	defs, err := e.store.ListPropertyDefinitions(ctx, workspaceID)
	if err != nil {
		return nil, &model.StorageError{Op: "list property definitions", Err: err}
	}
	return append(model.SystemProperties(), defs...), nil
}

// DeletePropertyDefinition soft-deletes a user-defined property. Existing
// value rows stay in place but stop resolving, so a definition restored
// under the same id would see them again.
func (e *Engine) DeletePropertyDefinition(ctx context.Context, workspaceID, id string) error {
	for _, sys := range model.SystemProperties() {
		if id == sys.ID {
			return model.NewBusinessRuleError(fmt.Sprintf("property %q is readonly", id))
		}
	}

	err := e.store.SoftDeletePropertyDefinition(ctx, workspaceID, id, e.now())
	if errors.Is(err, sql.ErrNoRows) {
		return &model.NotFoundError{Kind: "property", ID: id}
	}
	if err != nil {
		return &model.StorageError{Op: "delete property definition", Err: err}
	}

	e.publish(ctx, events.TopicPropertyDeleted, events.PropertyDeleted{WorkspaceID: workspaceID, PropertyID: id})
	e.logger.Info("deleted property definition", "workspace_id", workspaceID, "property_id", id)
	return nil
}
