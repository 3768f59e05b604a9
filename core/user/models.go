package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamunity/lms/core"
)

// Role is stored as its integer value (role_id).
type Role int

// Roles
const (
	RoleAdmin Role = iota + 1
	RoleTeacher
	RoleStudent
)

var (
	HashCost  = bcrypt.DefaultCost // mockable
	TokenFunc = newToken           // mockable

	roleNames = map[Role]string{
		RoleAdmin:   "Admin",
		RoleTeacher: "Teacher",
		RoleStudent: "Student",
	}
)

// ParseRole maps a role name (case-insensitive) to its Role.
func ParseRole(name string) (Role, bool) {
	name = core.CleanString(name, true /* lower */)
	for role, rn := range roleNames {
		if strings.ToLower(rn) == name {
			return role, true
		}
	}
	return 0, false
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role_id"`
	PasswordHash []byte    `json:"-"`
	AuthToken    string    `json:"-"`
	CreatedAt    time.Time `json:"-"` // UTC
	UpdatedAt    time.Time `json:"-"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), HashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// RegenerateToken gives the user a fresh opaque bearer token.
func (u *User) RegenerateToken() error {
	token, err := TokenFunc()
	if err != nil {
		return err
	}
	u.AuthToken = token
	return nil
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

func newToken() (string, error) {
	return core.RandomHex(24)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username  string `json:"username" validate:"required,max=80"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"required,max=80"`
	Email     string `json:"email" validate:"required,max=120"`

	role Role
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, translator ut.Translator, svc *Service) error {
	nu.Username = core.CleanString(nu.Username)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.ValidateStruct(validate, translator, nu); err != nil {
		return err
	}
	if err := svc.checkUniqueness(ctx, nu.Username, nu.Email); err != nil {
		return err
	}
	if err := validate.Var(nu.Role, roleTag); err != nil {
		return invalidRoleError()
	}
	nu.role, _ = ParseRole(nu.Role)
	return nil
}

// UpdateUser defines what information may be provided to modify an existing User.
// Nil or blank fields keep their previous value.
type UpdateUser struct {
	Username  *string `json:"username" validate:"omitempty,max=80"`
	Role      *string `json:"role"`
	FirstName *string `json:"first_name" validate:"omitempty,max=80"`
	LastName  *string `json:"last_name" validate:"omitempty,max=80"`
	Email     *string `json:"email" validate:"omitempty,max=120"`
}

// Apply checks the role of uu and returns origUsr with the supplied fields set.
func (uu UpdateUser) Apply(origUsr User) (User, error) {
	usr := origUsr
	if v := cleanPtr(uu.Username); v != "" {
		usr.Username = v
	}
	if v := cleanPtr(uu.FirstName); v != "" {
		usr.FirstName = v
	}
	if v := cleanPtr(uu.LastName); v != "" {
		usr.LastName = v
	}
	if v := core.CleanString(cleanPtr(uu.Email), true /* lower */); v != "" {
		usr.Email = v
	}
	if v := cleanPtr(uu.Role); v != "" {
		role, ok := ParseRole(v)
		if !ok {
			return User{}, invalidRoleError()
		}
		usr.Role = role
	}
	return usr, nil
}

func cleanPtr(s *string) string {
	if s == nil {
		return ""
	}
	return core.CleanString(*s)
}

type QueryFilter struct {
	Role Role
}

// GetFilter selects a single User; the first non-zero field wins.
type GetFilter struct {
	ID        int
	Username  string
	Email     string
	AuthToken string
}

func (gf GetFilter) IsEmpty() bool {
	return gf.ID == 0 && gf.Username == "" && gf.Email == "" && gf.AuthToken == ""
}
