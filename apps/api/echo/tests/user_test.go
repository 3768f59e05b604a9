package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/teamunity/lms/apps/api/echo"
	"github.com/teamunity/lms/core/user"
	"github.com/teamunity/lms/testutil"
)

func newUserBody(t *testing.T, uname, email, role string) []byte {
	return marchallObj(t, user.NewUser{
		Username:  uname,
		Password:  "pwd",
		Role:      role,
		FirstName: "First",
		LastName:  "Last",
		Email:     email,
	})
}

func Test_userApi_create(t *testing.T) {
	app, svcs := setup(t, nil)
	admin := testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	adminToken := testutil.Login(t, svcs, admin)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/users/create",
			body: newUserBody(t, "new", "new@lms.test", "student"), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken),
		},
		{
			name: "Admin required", method: http.MethodPost, path: "/users/create", token: testutil.Login(t, svcs, teacher),
			body: newUserBody(t, "new", "new@lms.test", "student"), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthorised),
		},
		{
			name: "Missing fields", method: http.MethodPost, path: "/users/create", token: adminToken,
			body: []byte(`{"username":"new","password":"pwd"}`), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Malformed JSON", method: http.MethodPost, path: "/users/create", token: adminToken,
			body: []byte(`{"username":`), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Email exists", method: http.MethodPost, path: "/users/create", token: adminToken,
			body:     newUserBody(t, "new", "Teacher@LMS.test", "student"),
			wantCode: http.StatusUnprocessableEntity,
			wantData: message(t, "User with email teacher@lms.test already exists, please double check the parameters and try again"),
		},
		{
			name: "Username exists", method: http.MethodPost, path: "/users/create", token: adminToken,
			body:     newUserBody(t, "teacher", "new@lms.test", "student"),
			wantCode: http.StatusUnprocessableEntity,
			wantData: message(t, "User with username teacher already exists, please double check the parameters and try again"),
		},
		{
			name: "Invalid role", method: http.MethodPost, path: "/users/create", token: adminToken,
			body: newUserBody(t, "new", "new@lms.test", "janitor"), wantCode: http.StatusUnprocessableEntity, wantData: message(t, user.ErrInvalidRole.Error()),
		},
		{
			name: "Success", method: http.MethodPost, path: "/users/create", token: adminToken,
			body: newUserBody(t, "new", "new@lms.test", "Student"), wantCode: http.StatusCreated, wantData: message(t, "User with email new@lms.test successfully created"),
		},
	}
	runHttpTests(t, app, tests)

	// exactly one new row, password never exposed
	users, err := svcs.UserSvc.Query(context.Background(), nil)
	assert.NoError(t, err)
	if assert.Len(t, users, 3) {
		created := users[2]
		assert.Equal(t, "new", created.Username)
		assert.Equal(t, "new@lms.test", created.Email)
		assert.Equal(t, user.RoleStudent, created.Role)
		assert.NoError(t, created.CheckPassword("pwd"))
		assert.NotEmpty(t, created.AuthToken)
	}

	req, rec := newAuthRequest(http.MethodGet, "/users/list", adminToken)
	app.ServeHTTP(rec, req)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), users[2].AuthToken)
}

func Test_userApi_query(t *testing.T) {
	app, svcs := setup(t, nil)
	admin := testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	student1 := testutil.CreateUser(t, svcs.UsrRepo, "student1", user.RoleStudent)
	student2 := testutil.CreateUser(t, svcs.UsrRepo, "student2", user.RoleStudent)

	adminToken := testutil.Login(t, svcs, admin)
	teacherToken := testutil.Login(t, svcs, teacher)
	studentToken := testutil.Login(t, svcs, student1)

	all := marchallList(t, admin, teacher, student1, student2)
	students := marchallList(t,
		StudentSummary{ID: student1.ID, FirstName: student1.FirstName, LastName: student1.LastName},
		StudentSummary{ID: student2.ID, FirstName: student2.FirstName, LastName: student2.LastName},
	)

	runHttpTests(t, app, []httpTest{
		{name: "Auth required", path: "/users/list", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "Student rejected", path: "/users/list", token: studentToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthorised)},
		{name: "Admin", path: "/users/list", token: adminToken, wantCode: http.StatusOK, wantData: all},
		{name: "Teacher", path: "/users/list", token: teacherToken, wantCode: http.StatusOK, wantData: all},
		{name: "Students (student rejected)", path: "/users/list_students", token: studentToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthorised)},
		{name: "Students", path: "/users/list_students", token: teacherToken, wantCode: http.StatusOK, wantData: students},
	})
}

func Test_userApi_retrieve(t *testing.T) {
	app, svcs := setup(t, nil)
	admin := testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	adminToken := testutil.Login(t, svcs, admin)
	notFound := message(t, user.MsgNotFound)

	runHttpTests(t, app, []httpTest{
		{
			name: "Admin required", path: fmt.Sprintf("/users/%d", teacher.ID), token: testutil.Login(t, svcs, teacher),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthorised),
		},
		{
			name: "Found", path: fmt.Sprintf("/users/%d", teacher.ID), token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, UserDetail{
				FirstName: teacher.FirstName, LastName: teacher.LastName, Email: teacher.Email, Username: teacher.Username, Role: user.RoleTeacher,
			}),
		},
		{name: "Unknown ID", path: "/users/999", token: adminToken, wantCode: http.StatusUnprocessableEntity, wantData: notFound},
		{name: "Bad ID", path: "/users/lol", token: adminToken, wantCode: http.StatusUnprocessableEntity, wantData: notFound},
	})
}

func Test_userApi_update(t *testing.T) {
	app, svcs := setup(t, nil)
	admin := testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	student := testutil.CreateUser(t, svcs.UsrRepo, "student", user.RoleStudent)
	adminToken := testutil.Login(t, svcs, admin)
	path := fmt.Sprintf("/users/%d", student.ID)

	runHttpTests(t, app, []httpTest{
		{
			name: "Admin required", method: http.MethodPut, path: path, token: testutil.Login(t, svcs, teacher),
			body: []byte(`{"first_name":"X"}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthorised),
		},
		{
			name: "Unknown ID", method: http.MethodPut, path: "/users/999", token: adminToken,
			body: []byte(`{"first_name":"X"}`), wantCode: http.StatusUnprocessableEntity, wantData: message(t, user.MsgUpdateNotFound),
		},
		{
			name: "Invalid role", method: http.MethodPut, path: path, token: adminToken,
			body: []byte(`{"role":"janitor"}`), wantCode: http.StatusUnprocessableEntity, wantData: message(t, user.ErrInvalidRole.Error()),
		},
		{
			name: "Email taken", method: http.MethodPut, path: path, token: adminToken,
			body: []byte(`{"email":"teacher@lms.test"}`), wantCode: http.StatusUnprocessableEntity, wantData: message(t, user.MsgUpdateFailed),
		},
		{
			name: "Success", method: http.MethodPut, path: path, token: adminToken,
			body: []byte(`{"first_name":"Ada","role":"TEACHER","last_name":""}`), wantCode: http.StatusOK, wantData: message(t, user.MsgUpdated),
		},
	})

	usr := mustGetUser(t, svcs, "student")
	assert.Equal(t, "Ada", usr.FirstName)
	assert.Equal(t, student.LastName, usr.LastName)
	assert.Equal(t, student.Email, usr.Email)
	assert.Equal(t, user.RoleTeacher, usr.Role)
}
