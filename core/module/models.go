package module

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/teamunity/lms/core"
)

type Module struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TeacherID   int    `json:"teacher_id"`
}

// NewModule contains information needed to create a new Module.
// TeacherID is never read from the request: it is the calling teacher.
type NewModule struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"required"`
	TeacherID   int    `json:"-" validate:"required"`
}

func (nm *NewModule) Validate(validate *validator.Validate, translator ut.Translator) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return core.ValidateStruct(validate, translator, nm)
}
