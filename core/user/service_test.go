package user_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/user"
	"github.com/teamunity/lms/testutil"
)

func strPtr(s string) *string { return &s }

type ctxKey struct{}

// uniquenessCtxRepo remembers the context its uniqueness check ran with.
type uniquenessCtxRepo struct {
	user.Repository
	got context.Context
}

func (repo *uniquenessCtxRepo) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...int) error {
	repo.got = ctx
	return repo.Repository.CheckUniqueness(ctx, username, email, excludedIDs...)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name   string
		want   user.Role
		wantOk bool
	}{
		{name: "Admin", want: user.RoleAdmin, wantOk: true},
		{name: "teacher", want: user.RoleTeacher, wantOk: true},
		{name: " STUDENT ", want: user.RoleStudent, wantOk: true},
		{name: "principal"},
		{name: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := user.ParseRole(tt.name)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	testutil.CreateUser(t, svcs.UsrRepo, "taken", user.RoleStudent)

	valid := func() user.NewUser {
		return user.NewUser{
			Username:  "jdoe",
			Password:  "secret",
			Role:      "Student",
			FirstName: "John",
			LastName:  "Doe",
			Email:     "JDoe@lms.test",
		}
	}

	tests := []struct {
		name    string
		mutate  func(nu *user.NewUser)
		wantMsg string
	}{
		{name: "missing first name", mutate: func(nu *user.NewUser) { nu.FirstName = "" }, wantMsg: core.MsgInvalidParams},
		{name: "blank password", mutate: func(nu *user.NewUser) { nu.Password = "" }, wantMsg: core.MsgInvalidParams},
		{name: "username too long", mutate: func(nu *user.NewUser) { nu.Username = strings.Repeat("u", 81) }, wantMsg: core.MsgInvalidParams},
		{name: "email too long", mutate: func(nu *user.NewUser) { nu.Email = strings.Repeat("e", 116) + "@x.io" }, wantMsg: core.MsgInvalidParams},
		{name: "password too long for bcrypt", mutate: func(nu *user.NewUser) { nu.Password = strings.Repeat("p", 73) }, wantMsg: core.MsgInvalidParams},
		{
			name:    "email exists",
			mutate:  func(nu *user.NewUser) { nu.Email = "TAKEN@lms.test" },
			wantMsg: "User with email taken@lms.test already exists, please double check the parameters and try again",
		},
		{
			name:    "username exists",
			mutate:  func(nu *user.NewUser) { nu.Username = "taken" },
			wantMsg: "User with username taken already exists, please double check the parameters and try again",
		},
		{
			name:    "invalid role",
			mutate:  func(nu *user.NewUser) { nu.Role = "Principal" },
			wantMsg: "You've specified an invalid role, please double check the parameters and try again",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.mutate(&nu)
			_, err := svcs.UserSvc.Create(ctx, nu)
			require.Error(t, err)
			vErr, ok := errors.Cause(err).(*core.ValidationError)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, tt.wantMsg, vErr.Error())
		})
	}

	t.Run("created", func(t *testing.T) {
		usr, err := svcs.UserSvc.Create(ctx, valid())
		require.NoError(t, err)
		assert.NotZero(t, usr.ID)
		assert.Equal(t, "jdoe@lms.test", usr.Email)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.Len(t, usr.AuthToken, 48)
		assert.NoError(t, usr.CheckPassword("secret"))
		assert.Equal(t, "User with email jdoe@lms.test successfully created", user.CreatedMessage(usr))

		users, err := svcs.UserSvc.Query(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	usr := testutil.CreateUser(t, svcs.UsrRepo, "jdoe", user.RoleStudent)
	other := testutil.CreateUser(t, svcs.UsrRepo, "other", user.RoleTeacher)

	t.Run("not found", func(t *testing.T) {
		_, err := svcs.UserSvc.Update(ctx, 999, user.UpdateUser{FirstName: strPtr("x")})
		nfErr, ok := errors.Cause(err).(*core.NotFoundError)
		require.True(t, ok, "got %T", err)
		assert.Equal(t, "We couldn't find the specified user, please try again", nfErr.Error())
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svcs.UserSvc.Update(ctx, usr.ID, user.UpdateUser{Role: strPtr("janitor")})
		_, ok := errors.Cause(err).(*core.ValidationError)
		assert.True(t, ok, "got %T", err)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := svcs.UserSvc.Update(ctx, usr.ID, user.UpdateUser{LastName: strPtr(strings.Repeat("l", 81))})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "got %T", err)
		assert.Equal(t, core.MsgInvalidParams, vErr.Error())

		got, err := svcs.UserSvc.GetByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, usr.LastName, got.LastName)
	})

	t.Run("conflict rolls back", func(t *testing.T) {
		_, err := svcs.UserSvc.Update(ctx, usr.ID, user.UpdateUser{Email: strPtr(other.Email), FirstName: strPtr("Changed")})
		cErr, ok := errors.Cause(err).(*core.ConflictError)
		require.True(t, ok, "got %T", err)
		assert.Equal(t, "An error occurred while trying to update the user, please try again", cErr.Error())

		got, err := svcs.UserSvc.GetByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, usr.FirstName, got.FirstName)
		assert.Equal(t, usr.Email, got.Email)
	})

	t.Run("partial update", func(t *testing.T) {
		got, err := svcs.UserSvc.Update(ctx, usr.ID, user.UpdateUser{
			FirstName: strPtr("Jane"),
			LastName:  strPtr("  "),
			Role:      strPtr("TEACHER"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane", got.FirstName)
		assert.Equal(t, usr.LastName, got.LastName)
		assert.Equal(t, usr.Email, got.Email)
		assert.Equal(t, user.RoleTeacher, got.Role)
		assert.Equal(t, usr.AuthToken, got.AuthToken)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	usr := testutil.CreateUser(t, svcs.UsrRepo, "jdoe", user.RoleStudent, "pass")

	tests := []struct {
		name    string
		uname   string
		pwd     string
		wantErr bool
	}{
		{name: "unknown user", uname: "nobody", pwd: "pass", wantErr: true},
		{name: "wrong password", uname: "jdoe", pwd: "nope", wantErr: true},
		{name: "blank username", uname: "", pwd: "pass", wantErr: true},
		{name: "ok", uname: "jdoe", pwd: "pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svcs.UserSvc.Authenticate(ctx, tt.uname, tt.pwd)
			if tt.wantErr {
				aErr, ok := errors.Cause(err).(*core.AuthError)
				require.True(t, ok, "got %T", err)
				assert.Equal(t, 422, aErr.Status)
				assert.Equal(t, user.MsgLoginFailed, aErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	testutil.CreateUser(t, svcs.UsrRepo, "jdoe", user.RoleStudent, "old")

	require.NoError(t, svcs.UserSvc.ResetPassword(ctx, "jdoe", "new"))
	_, err := svcs.UserSvc.Authenticate(ctx, "jdoe", "new")
	assert.NoError(t, err)
	assert.Equal(t, user.ErrNotFound, svcs.UserSvc.ResetPassword(ctx, "nobody", "new"))
}

func TestService_QueryStudents(t *testing.T) {
	ctx := context.Background()
	svcs := testutil.NewServices(t)
	testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	s1 := testutil.CreateUser(t, svcs.UsrRepo, "s1", user.RoleStudent)
	testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	s2 := testutil.CreateUser(t, svcs.UsrRepo, "s2", user.RoleStudent)

	students, err := svcs.UserSvc.QueryStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []user.User{s1, s2}, students)
}

func TestService_Create_forwardsContext(t *testing.T) {
	svcs := testutil.NewServices(t)
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	repo := &uniquenessCtxRepo{Repository: svcs.UsrRepo}
	svc := user.NewService(repo, validate, translator)

	ctx := context.WithValue(context.Background(), ctxKey{}, "request")
	_, err := svc.Create(ctx, user.NewUser{
		Username: "jdoe", Password: "secret", Role: "Student", FirstName: "John", LastName: "Doe", Email: "jdoe@lms.test",
	})
	require.NoError(t, err)
	require.NotNil(t, repo.got)
	assert.Equal(t, "request", repo.got.Value(ctxKey{}))
}
