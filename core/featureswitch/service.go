package featureswitch

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const MsgInvalidActive = "Invalid value for active. Please use 1 to turn on and 0 to turn off."

var (
	// errors
	ErrNotFound = errors.New("feature switch not found")
)

type (
	Repository interface {
		GetFeatureSwitch(ctx context.Context, name string) (FeatureSwitch, error)
		// SaveFeatureSwitch creates the switch named fs.Name or overwrites its state.
		SaveFeatureSwitch(ctx context.Context, fs FeatureSwitch) (FeatureSwitch, error)
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

// ToggledMessage reports the new state of fs, eg: "Hacker mode turned on".
func ToggledMessage(fs FeatureSwitch) string {
	state := "off"
	if fs.Active {
		state = "on"
	}
	return fmt.Sprintf("%s turned %s", fs.Label(), state)
}

// Toggle turns the switch named name on or off, creating it on first use.
func (svc *Service) Toggle(ctx context.Context, name string, tg Toggle) (FeatureSwitch, error) {
	if err := tg.Validate(svc.validate, svc.translator); err != nil {
		return FeatureSwitch{}, err
	}

	fs, err := svc.repo.GetFeatureSwitch(ctx, name)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return FeatureSwitch{}, errors.Wrap(err, "finding feature switch")
		}
		fs = FeatureSwitch{Name: name}
	}
	fs.Active = *tg.Active == 1

	fs, err = svc.repo.SaveFeatureSwitch(ctx, fs)
	if err != nil {
		return FeatureSwitch{}, errors.Wrap(err, "saving feature switch")
	}
	return fs, nil
}

// IsActive reports whether the switch exists and is on.
func (svc *Service) IsActive(ctx context.Context, name string) (bool, error) {
	fs, err := svc.repo.GetFeatureSwitch(ctx, name)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding feature switch")
	}
	return fs.Active, nil
}
