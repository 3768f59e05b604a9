package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/teamunity/lms/apps/api/echo"
	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/session"
	"github.com/teamunity/lms/core/user"
	"github.com/teamunity/lms/testutil"
)

func credentials(t *testing.T, uname, pwd string) []byte {
	return marchallObj(t, map[string]string{"username": uname, "password": pwd})
}

func login(t *testing.T, app http.Handler, uname, pwd string) string {
	t.Helper()
	body := credentials(t, uname, pwd)
	req, rec := newRequest(http.MethodPost, "/login", body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func Test_sessionApi_login(t *testing.T) {
	app, svcs := setup(t, nil)
	admin := testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin, "s3cret")

	badCreds := message(t, user.MsgLoginFailed)
	badReq := message(t, core.MsgBadRequest)

	runHttpTests(t, app, []httpTest{
		{name: "Malformed JSON", method: http.MethodPost, path: "/login", body: []byte(`{"username":`), wantCode: http.StatusBadRequest, wantData: badReq},
		{name: "Empty body", method: http.MethodPost, path: "/login", wantCode: http.StatusBadRequest, wantData: badReq},
		{name: "Empty object", method: http.MethodPost, path: "/login", body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: badReq},
		{name: "Null body", method: http.MethodPost, path: "/login", body: []byte(`null`), wantCode: http.StatusBadRequest, wantData: badReq},
		{
			name: "Missing password", method: http.MethodPost, path: "/login",
			body: []byte(`{"username":"admin"}`), wantCode: http.StatusUnprocessableEntity, wantData: badCreds,
		},
		{
			name: "Missing username", method: http.MethodPost, path: "/login",
			body: []byte(`{"password":"s3cret"}`), wantCode: http.StatusUnprocessableEntity, wantData: badCreds,
		},
		{
			name: "Unknown user", method: http.MethodPost, path: "/login",
			body: credentials(t, "ghost", "s3cret"), wantCode: http.StatusUnprocessableEntity, wantData: badCreds,
		},
		{
			name: "Wrong password", method: http.MethodPost, path: "/login",
			body: credentials(t, "admin", "nope"), wantCode: http.StatusUnprocessableEntity, wantData: badCreds,
		},
		{
			name: "Success", method: http.MethodPost, path: "/login",
			body:     credentials(t, "admin", "s3cret"),
			wantCode: http.StatusOK, wantData: marchallObj(t, LoginResponse{Message: session.MsgLoggedIn, Token: admin.AuthToken}),
		},
	})
}

func Test_sessionApi_concurrentLogins(t *testing.T) {
	app, svcs := setup(t, nil)
	testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)

	adminToken := login(t, app, "admin", "admin")
	teacherToken := login(t, app, "teacher", "teacher")
	assert.NotEqual(t, adminToken, teacherToken)

	for _, token := range []string{adminToken, teacherToken} {
		req, rec := newAuthRequest(http.MethodGet, "/users/list", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Equal(t, 2, svcs.Sessions.Len())
}

func Test_sessionApi_logout(t *testing.T) {
	app, svcs := setup(t, nil)
	testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	token := login(t, app, "admin", "admin")
	loggedOut := message(t, session.MsgLoggedOut)

	runHttpTests(t, app, []httpTest{
		{name: "Session works", path: "/users/list", token: token, wantCode: http.StatusOK, wantData: marchallList(t, mustGetUser(t, svcs, "admin"))},
		{name: "Logout", method: http.MethodPut, path: "/logout", token: token, wantCode: http.StatusOK, wantData: loggedOut},
		{name: "Session gone", path: "/users/list", token: token, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "Logout again", method: http.MethodPut, path: "/logout", token: token, wantCode: http.StatusOK, wantData: loggedOut},
		{name: "Logout without token", method: http.MethodPut, path: "/logout", wantCode: http.StatusOK, wantData: loggedOut},
	})
	assert.Equal(t, 0, svcs.Sessions.Len())
}
