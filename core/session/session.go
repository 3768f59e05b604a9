// Package session keeps track of the logged-in principals.
// A session is keyed by the user's own bearer token, so each user holds at most one entry
// and logins of different users never evict each other.
package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/user"
)

const (
	MsgLoggedIn  = "Successfully logged-in"
	MsgLoggedOut = "Successfully logged-out of the app"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
)

type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Store holds the active sessions. Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts sess or replaces the entry holding the same token.
	Save(ctx context.Context, sess Session) error
	// Get returns ErrNotFound for an unknown token.
	Get(ctx context.Context, token string) (Session, error)
	// Delete is a no-op for an unknown token.
	Delete(ctx context.Context, token string) error
}

type Manager struct {
	store Store
	users *user.Service
}

func NewManager(store Store, users *user.Service) *Manager {
	return &Manager{store: store, users: users}
}

// Login checks the credentials and opens a session for the user's stored token.
func (m *Manager) Login(ctx context.Context, uname, pwd string) (Session, error) {
	usr, err := m.users.Authenticate(ctx, uname, pwd)
	if err != nil {
		return Session{}, err
	}
	if usr.AuthToken == "" {
		return Session{}, core.NewLoginError(user.MsgLoginFailed)
	}

	sess := Session{Token: usr.AuthToken, UserID: usr.ID, CreatedAt: time.Now().UTC()}
	if err = m.store.Save(ctx, sess); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return sess, nil
}

// Logout closes the session of token. Logging out twice is not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return errors.Wrap(m.store.Delete(ctx, token), "deleting session")
}

// Resolve returns the user owning the open session of token, or ErrNotFound.
func (m *Manager) Resolve(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrNotFound
	}
	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return user.User{}, err
	}

	usr, err := m.users.GetByToken(ctx, sess.Token)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by token")
	}
	return usr, nil
}
