package property

import (
	"fmt"

	"github.com/orehub/minetrack/internal/model"
)

// textCreator handles text and rich_text properties. Both are scalar
// strings; they differ only in the config type carrying the length limit.
type textCreator struct{}

func textMaxLength(def *model.PropertyDefinition) int {
	switch cfg := def.Config.(type) {
	case model.TextConfig:
		return cfg.MaxLength
	case model.RichTextConfig:
		return cfg.MaxLength
	}
	return 0
}

func (p *textCreator) ValidateFormat(def *model.PropertyDefinition, raw any) error {
	if _, ok := asString(raw); !ok {
		return model.NewFormatError(fmt.Sprintf("%s must be a string", def.Name))
	}
	return nil
}

func (p *textCreator) ValidateRules(def *model.PropertyDefinition, raw any) error {
	val, _ := asString(raw)
	if val == nil {
		if !def.Nullable {
			return model.NewBusinessRuleError(fmt.Sprintf("%s requires a value", def.Name))
		}
		return nil
	}
	if max := textMaxLength(def); max > 0 && len([]rune(*val)) > max {
		return model.NewBusinessRuleError(
			fmt.Sprintf("%s must be %d characters or fewer", def.Name, max))
	}
	return nil
}

func (p *textCreator) ToRows(def *model.PropertyDefinition, issueID string, raw any) (model.RowSet, error) {
	val, _ := asString(raw)
	return scalarRows(def, issueID, val), nil
}
