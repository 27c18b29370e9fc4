package property

import (
	"fmt"

	"github.com/orehub/minetrack/internal/model"
)

// minersCreator handles miner-list properties: an ordered list of miner
// ids with no duplicates and an optional size limit. Ids are opaque here;
// resolving them against a miner directory is the caller's concern.
type minersCreator struct{}

func minersConfig(def *model.PropertyDefinition) model.MinersConfig {
	if cfg, ok := def.Config.(model.MinersConfig); ok {
		return cfg
	}
	return model.MinersConfig{}
}

func (p *minersCreator) ValidateFormat(def *model.PropertyDefinition, raw any) error {
	if _, ok := asStringList(raw); !ok {
		return model.NewFormatError(fmt.Sprintf("%s must be a list of miner ids", def.Name))
	}
	return nil
}

func (p *minersCreator) ValidateRules(def *model.PropertyDefinition, raw any) error {
	vals, _ := asStringList(raw)
	if len(vals) == 0 {
		if !def.Nullable {
			return model.NewBusinessRuleError(fmt.Sprintf("%s requires a value", def.Name))
		}
		return nil
	}

	var messages []string
	for _, v := range vals {
		if v == "" {
			messages = append(messages, fmt.Sprintf("%s contains an empty miner id", def.Name))
			break
		}
	}
	if dup, ok := findDuplicate(vals); ok {
		messages = append(messages, fmt.Sprintf("miner %q is listed more than once", dup))
	}
	if cfg := minersConfig(def); cfg.MaxMiners > 0 && len(vals) > cfg.MaxMiners {
		messages = append(messages,
			fmt.Sprintf("%s allows at most %d miners", def.Name, cfg.MaxMiners))
	}
	if len(messages) > 0 {
		return model.NewBusinessRuleError(messages...)
	}
	return nil
}

func (p *minersCreator) ToRows(def *model.PropertyDefinition, issueID string, raw any) (model.RowSet, error) {
	vals, _ := asStringList(raw)
	return model.RowSet{Multis: listRows(def, issueID, vals)}, nil
}
