package assignment

import (
	"context"
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
)

const msgCreated = "Assignment with title %s successfully created"

type (
	Repository interface {
		// CreateAssignment returns core.ErrInvalidReference when the module does not exist.
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		QueryAssignments(ctx context.Context) ([]Assignment, error)
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

func CreatedMessage(asg Assignment) string {
	return fmt.Sprintf(msgCreated, asg.Title)
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	if err := na.Validate(svc.validate, svc.translator); err != nil {
		return Assignment{}, err
	}
	dueDate, err := time.Parse(DateLayout, na.DueDate)
	if err != nil {
		return Assignment{}, core.NewInvalidParamsError(core.FieldError{Field: "due_date", Error: err.Error()})
	}

	asg, err := svc.repo.CreateAssignment(ctx, Assignment{
		Title:       na.Title,
		Description: na.Description,
		ModuleID:    na.ModuleID,
		DueDate:     dueDate,
	})
	if err != nil {
		if errors.Cause(err) == core.ErrInvalidReference {
			return Assignment{}, core.NewInvalidParamsError(core.FieldError{Field: "module_id", Error: err.Error()})
		}
		return Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (svc *Service) Query(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx)
}
