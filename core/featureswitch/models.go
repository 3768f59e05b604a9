package featureswitch

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/teamunity/lms/core"
)

type FeatureSwitch struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Label is the human-readable name of the switch, eg: hacker_mode -> Hacker mode.
func (fs FeatureSwitch) Label() string {
	label := strings.ReplaceAll(fs.Name, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// Toggle holds the requested state: 1 turns the switch on, 0 turns it off.
type Toggle struct {
	Active *int `json:"active" validate:"required,oneof=0 1"`
}

func (tg Toggle) Validate(validate *validator.Validate, translator ut.Translator) error {
	if err := core.ValidateStruct(validate, translator, tg); err != nil {
		return core.NewBadRequestError(MsgInvalidActive)
	}
	return nil
}
