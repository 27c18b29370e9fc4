package property

import (
	"fmt"

	"github.com/orehub/minetrack/internal/model"
)

// userCreator handles user properties: a scalar user id. The id is opaque
// to the engine; membership checks against a user directory happen at the
// boundary, before the engine is called.
type userCreator struct{}

func (p *userCreator) ValidateFormat(def *model.PropertyDefinition, raw any) error {
	if _, ok := asString(raw); !ok {
		return model.NewFormatError(fmt.Sprintf("%s must be a string", def.Name))
	}
	return nil
}

func (p *userCreator) ValidateRules(def *model.PropertyDefinition, raw any) error {
	val, _ := asString(raw)
	if val == nil {
		if !def.Nullable {
			return model.NewBusinessRuleError(fmt.Sprintf("%s requires a value", def.Name))
		}
		return nil
	}
	if *val == "" {
		return model.NewBusinessRuleError(fmt.Sprintf("%s must not be an empty user id", def.Name))
	}
	return nil
}

func (p *userCreator) ToRows(def *model.PropertyDefinition, issueID string, raw any) (model.RowSet, error) {
	val, _ := asString(raw)
	return scalarRows(def, issueID, val), nil
}
