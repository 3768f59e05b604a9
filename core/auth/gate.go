package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/featureswitch"
	"github.com/teamunity/lms/core/session"
	"github.com/teamunity/lms/core/user"
)

// Capability is what an operation requires from its caller.
type Capability int

const (
	AnyAuthenticated Capability = iota
	StudentOnly
	TeacherOnly
	AdminOnly
	AdminOrTeacher
)

func (c Capability) String() string {
	switch c {
	case AnyAuthenticated:
		return "AnyAuthenticated"
	case StudentOnly:
		return "StudentOnly"
	case TeacherOnly:
		return "TeacherOnly"
	case AdminOnly:
		return "AdminOnly"
	case AdminOrTeacher:
		return "AdminOrTeacher"
	}
	return "Capability(?)"
}

// Allows reports whether usr's role satisfies c.
func (c Capability) Allows(usr user.User) bool {
	switch c {
	case AnyAuthenticated:
		return usr.Role.Valid()
	case StudentOnly:
		return usr.IsStudent()
	case TeacherOnly:
		return usr.IsTeacher()
	case AdminOnly:
		return usr.IsAdmin()
	case AdminOrTeacher:
		return usr.IsAdmin() || usr.IsTeacher()
	}
	return false
}

// Impersonation names the user injected for a capability while hacker mode is on.
// An Anonymous entry lets the operation run as the zero user when that account does not exist;
// only operations that never read their caller may use it.
type Impersonation struct {
	Username  string
	Anonymous bool
}

// DefaultImpersonation is the hacker mode table. StudentOnly maps to the admin account.
func DefaultImpersonation() map[Capability]Impersonation {
	return map[Capability]Impersonation{
		AdminOnly:        {Username: "admin", Anonymous: true},
		AdminOrTeacher:   {Username: "admin", Anonymous: true},
		TeacherOnly:      {Username: "teacher"},
		StudentOnly:      {Username: "admin"},
		AnyAuthenticated: {Username: "teacher"},
	}
}

type Option func(*Gate)

// WithImpersonation replaces the hacker mode impersonation table.
func WithImpersonation(table map[Capability]Impersonation) Option {
	return func(g *Gate) {
		g.impersonation = table
	}
}

// Gate decides whether the bearer of a token may perform an operation.
type Gate struct {
	sessions      *session.Manager
	users         *user.Service
	switches      *featureswitch.Service
	switchName    string
	impersonation map[Capability]Impersonation
}

func NewGate(
	sessions *session.Manager,
	users *user.Service,
	switches *featureswitch.Service,
	switchName string,
	opts ...Option,
) *Gate {
	g := &Gate{
		sessions:      sessions,
		users:         users,
		switches:      switches,
		switchName:    switchName,
		impersonation: DefaultImpersonation(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize returns the identity the operation runs as.
// While the hacker mode switch is on, the token is ignored and the impersonated user is returned unchecked.
func (g *Gate) Authorize(ctx context.Context, token string, capability Capability) (user.User, error) {
	hacking, err := g.switches.IsActive(ctx, g.switchName)
	if err != nil {
		return user.User{}, errors.Wrap(err, "checking hacker mode")
	}
	if hacking {
		return g.impersonate(ctx, capability)
	}

	usr, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return user.User{}, core.NewAuthError(core.MsgInvalidToken)
		}
		return user.User{}, errors.Wrap(err, "resolving session")
	}
	if !capability.Allows(usr) {
		return user.User{}, core.NewAuthError(core.MsgNotAuthorised)
	}
	return usr, nil
}

func (g *Gate) impersonate(ctx context.Context, capability Capability) (user.User, error) {
	imp, ok := g.impersonation[capability]
	if !ok {
		return user.User{}, core.NewAuthError(core.MsgInvalidToken)
	}
	usr, err := g.users.GetByUsername(ctx, imp.Username)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			if imp.Anonymous {
				return user.User{}, nil
			}
			return user.User{}, core.NewAuthError(core.MsgInvalidToken)
		}
		return user.User{}, errors.Wrap(err, "finding impersonated user")
	}
	return usr, nil
}
