package module

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/user"
)

const msgCreated = "Module with title %s successfully created"

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module) (Module, error)
		QueryModules(ctx context.Context) ([]Module, error)
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

func CreatedMessage(mod Module) string {
	return fmt.Sprintf(msgCreated, mod.Title)
}

// Create stores a Module owned by teacher.
func (svc *Service) Create(ctx context.Context, teacher user.User, nm NewModule) (Module, error) {
	nm.TeacherID = teacher.ID
	if err := nm.Validate(svc.validate, svc.translator); err != nil {
		return Module{}, err
	}

	mod, err := svc.repo.CreateModule(ctx, Module{
		Title:       nm.Title,
		Description: nm.Description,
		TeacherID:   nm.TeacherID,
	})
	if err != nil {
		if errors.Cause(err) == core.ErrInvalidReference {
			return Module{}, core.NewInvalidParamsError(core.FieldError{Field: "teacher_id", Error: err.Error()})
		}
		return Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (svc *Service) Query(ctx context.Context) ([]Module, error) {
	return svc.repo.QueryModules(ctx)
}
