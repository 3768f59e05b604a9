package user

import (
	"context"
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamunity/lms/core"
)

const (
	MsgUpdated         = "User successfully updated"
	MsgUpdateFailed    = "An error occurred while trying to update the user, please try again"
	MsgUpdateNotFound  = "We couldn't find the specified user, please try again"
	MsgNotFound        = "No user found, please try again"
	MsgLoginFailed     = "An error occurred while trying to log-in, please double-check your credentials and try again."
	msgCreated         = "User with email %s successfully created"
	msgEmailExists     = "User with email %s already exists, please double check the parameters and try again"
	msgUsernameExists  = "User with username %s already exists, please double check the parameters and try again"
	msgInvalidRoleText = "You've specified an invalid role, please double check the parameters and try again"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrConflict       = errors.New("username or email already taken")
	ErrInvalidRole    = errors.New(msgInvalidRoleText)
)

// CreatedMessage is the confirmation sent back once usr has been registered.
func CreatedMessage(usr User) string {
	return fmt.Sprintf(msgCreated, usr.Email)
}

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when another user,
		// not listed in excludedIDs, already holds username or email.
		CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...int) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryUsers(ctx context.Context, filter *QueryFilter) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// UpdateUser writes every column of usr in a transaction, rolling back and returning ErrConflict
		// on a uniqueness violation.
		UpdateUser(ctx context.Context, usr User) (User, error)
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

func (svc *Service) checkUniqueness(ctx context.Context, uname, email string, excludedIDs ...int) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, excludedIDs...); err != nil {
		var field, msg string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field, msg = "username", fmt.Sprintf(msgUsernameExists, uname)
		case ErrEmailExists:
			field, msg = "email", fmt.Sprintf(msgEmailExists, email)
		default:
			return errors.Wrap(err, "checking user uniqueness")
		}
		return core.NewValidationError(errors.New(msg), core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create registers a new User with a hashed password and a fresh bearer token.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(ctx, svc.validate, svc.translator, svc); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Username:  nu.Username,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Role:      nu.role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return User{}, core.NewInvalidParamsError(core.FieldError{Field: "password", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "hashing password")
	}
	if err := usr.RegenerateToken(); err != nil {
		return User{}, errors.Wrap(err, "generating token")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrConflict {
			return User{}, core.NewValidationError(errors.New(fmt.Sprintf(msgEmailExists, nu.Email)))
		}
		return User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

// Update applies the supplied fields of uu to the User identified by id.
func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	origUsr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.NewNotFoundError(MsgUpdateNotFound)
		}
		return User{}, errors.Wrap(err, "finding user by ID")
	}

	if err = core.ValidateStruct(svc.validate, svc.translator, uu); err != nil {
		return User{}, err
	}
	usr, err := uu.Apply(origUsr)
	if err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrConflict {
			return User{}, core.NewConflictError(MsgUpdateFailed, err)
		}
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	uname = core.CleanString(uname)
	if uname == "" {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{Username: uname})
}

// GetByToken finds the User holding exactly this bearer token.
func (svc *Service) GetByToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return svc.repo.GetUser(ctx, GetFilter{AuthToken: token})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter)
}

func (svc *Service) QueryStudents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, &QueryFilter{Role: RoleStudent})
}

// Authenticate checks the credentials and returns the matching User.
// Unknown usernames and wrong passwords are reported alike.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.NewLoginError(MsgLoginFailed)
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, core.NewLoginError(MsgLoginFailed)
	}
	return usr, nil
}

// ResetPassword replaces the password of the User known by uname.
func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
