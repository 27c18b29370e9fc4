package property

import (
	"fmt"

	"github.com/orehub/minetrack/internal/model"
)

// selectCreator handles single-select properties: a scalar whose value
// must be one of the configured options.
type selectCreator struct{}

func selectOptions(def *model.PropertyDefinition) []string {
	if cfg, ok := def.Config.(model.SelectConfig); ok {
		return cfg.Options
	}
	return nil
}

func (p *selectCreator) ValidateFormat(def *model.PropertyDefinition, raw any) error {
	if _, ok := asString(raw); !ok {
		return model.NewFormatError(fmt.Sprintf("%s must be a string", def.Name))
	}
	return nil
}

func (p *selectCreator) ValidateRules(def *model.PropertyDefinition, raw any) error {
	val, _ := asString(raw)
	if val == nil {
		if !def.Nullable {
			return model.NewBusinessRuleError(fmt.Sprintf("%s requires a value", def.Name))
		}
		return nil
	}
	if !contains(selectOptions(def), *val) {
		return model.NewBusinessRuleError(
			fmt.Sprintf("%q is not an option of %s", *val, def.Name))
	}
	return nil
}

func (p *selectCreator) ToRows(def *model.PropertyDefinition, issueID string, raw any) (model.RowSet, error) {
	val, _ := asString(raw)
	return scalarRows(def, issueID, val), nil
}

// multiSelectCreator handles multi-select properties: an ordered set of
// option values with an optional selection limit.
type multiSelectCreator struct{}

func multiSelectConfig(def *model.PropertyDefinition) model.MultiSelectConfig {
	if cfg, ok := def.Config.(model.MultiSelectConfig); ok {
		return cfg
	}
	return model.MultiSelectConfig{}
}

func (p *multiSelectCreator) ValidateFormat(def *model.PropertyDefinition, raw any) error {
	if _, ok := asStringList(raw); !ok {
		return model.NewFormatError(fmt.Sprintf("%s must be a list of strings", def.Name))
	}
	return nil
}

func (p *multiSelectCreator) ValidateRules(def *model.PropertyDefinition, raw any) error {
	vals, _ := asStringList(raw)
	if len(vals) == 0 {
		if !def.Nullable {
			return model.NewBusinessRuleError(fmt.Sprintf("%s requires a value", def.Name))
		}
		return nil
	}

	cfg := multiSelectConfig(def)
	var messages []string
	for _, v := range vals {
		if !contains(cfg.Options, v) {
			messages = append(messages, fmt.Sprintf("%q is not an option of %s", v, def.Name))
		}
	}
	if dup, ok := findDuplicate(vals); ok {
		messages = append(messages, fmt.Sprintf("%q is selected more than once", dup))
	}
	if cfg.MaxSelections > 0 && len(vals) > cfg.MaxSelections {
		messages = append(messages,
			fmt.Sprintf("%s allows at most %d selections", def.Name, cfg.MaxSelections))
	}
	if len(messages) > 0 {
		return model.NewBusinessRuleError(messages...)
	}
	return nil
}

func (p *multiSelectCreator) ToRows(def *model.PropertyDefinition, issueID string, raw any) (model.RowSet, error) {
	vals, _ := asStringList(raw)
	return model.RowSet{Multis: listRows(def, issueID, vals)}, nil
}
