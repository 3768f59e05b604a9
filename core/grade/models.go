package grade

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/teamunity/lms/core"
)

type Grade struct {
	ID           int     `json:"id"`
	Score        float64 `json:"score"`
	StudentID    int     `json:"student_id"`
	AssignmentID int     `json:"assignment_id"`
}

// NewGrade contains information needed to create a new Grade.
// A zero score is a grade, so Score is a pointer.
type NewGrade struct {
	StudentID    int      `json:"student_id" validate:"required"`
	AssignmentID int      `json:"assignment_id" validate:"required"`
	Score        *float64 `json:"score" validate:"required"`
}

func (ng *NewGrade) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, ng)
}

type QueryFilter struct {
	StudentID int
}
