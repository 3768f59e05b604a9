package grade

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/user"
)

const (
	MsgNotAStudent = "You are not a student, so there are no grades to view"
	msgCreated     = "Grade for student %d and assignment %d successfully created"
)

type (
	Repository interface {
		// CreateGrade returns core.ErrInvalidReference when the student or the assignment does not exist.
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		QueryGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
	}
}

func CreatedMessage(grd Grade) string {
	return fmt.Sprintf(msgCreated, grd.StudentID, grd.AssignmentID)
}

func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	if err := ng.Validate(svc.validate, svc.translator); err != nil {
		return Grade{}, err
	}

	grd, err := svc.repo.CreateGrade(ctx, Grade{
		Score:        *ng.Score,
		StudentID:    ng.StudentID,
		AssignmentID: ng.AssignmentID,
	})
	if err != nil {
		if errors.Cause(err) == core.ErrInvalidReference {
			return Grade{}, core.NewInvalidParamsError()
		}
		return Grade{}, errors.Wrap(err, "inserting grade")
	}
	return grd, nil
}

// View lists the grades of caller, who must be a student.
func (svc *Service) View(ctx context.Context, caller user.User) ([]Grade, error) {
	if !caller.IsStudent() {
		return nil, core.NewValidationError(errors.New(MsgNotAStudent))
	}
	return svc.repo.QueryGrades(ctx, QueryFilter{StudentID: caller.ID})
}
