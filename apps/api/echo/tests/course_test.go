package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/teamunity/lms/apps/api/echo"
	"github.com/teamunity/lms/core/featureswitch"
	"github.com/teamunity/lms/core/grade"
	"github.com/teamunity/lms/core/user"
	"github.com/teamunity/lms/testutil"
)

func Test_moduleApi(t *testing.T) {
	app, svcs := setup(t, nil)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	student := testutil.CreateUser(t, svcs.UsrRepo, "student", user.RoleStudent)
	teacherToken := testutil.Login(t, svcs, teacher)

	runHttpTests(t, app, []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/modules/create",
			body: []byte(`{"title":"Go","description":"Learn Go"}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken),
		},
		{
			name: "Teacher required", method: http.MethodPost, path: "/modules/create", token: testutil.Login(t, svcs, student),
			body: []byte(`{"title":"Go","description":"Learn Go"}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthorised),
		},
		{
			name: "Missing description", method: http.MethodPost, path: "/modules/create", token: teacherToken,
			body: []byte(`{"title":"Go"}`), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Title too long", method: http.MethodPost, path: "/modules/create", token: teacherToken,
			body: marchallObj(t, map[string]string{"title": strings.Repeat("t", 121), "description": "Learn Go"}), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Created", method: http.MethodPost, path: "/modules/create", token: teacherToken,
			body: []byte(`{"title":"Go","description":"Learn Go"}`), wantCode: http.StatusCreated, wantData: message(t, "Module with title Go successfully created"),
		},
		{name: "List", path: "/modules/list", token: teacherToken, wantCode: http.StatusOK, wantData: marchallList(t, TitleSummary{ID: 1, Title: "Go"})},
	})

	mods, err := svcs.ModuleSvc.Query(context.Background())
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, teacher.ID, mods[0].TeacherID)
	assert.Equal(t, "Learn Go", mods[0].Description)
}

func Test_assignmentApi(t *testing.T) {
	app, svcs := setup(t, nil)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	mod := testutil.CreateModule(t, svcs.ModRepo, "Go", teacher)
	teacherToken := testutil.Login(t, svcs, teacher)

	body := func(moduleID int, dueDate string) []byte {
		return marchallObj(t, map[string]interface{}{
			"title": "Concurrency", "description": "Channels", "module_id": moduleID, "due_date": dueDate,
		})
	}

	runHttpTests(t, app, []httpTest{
		{name: "Auth required", path: "/assignments/list", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "Empty list", path: "/assignments/list", token: teacherToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "Missing due date", method: http.MethodPost, path: "/assignments/create", token: teacherToken,
			body: body(mod.ID, ""), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Bad due date", method: http.MethodPost, path: "/assignments/create", token: teacherToken,
			body: body(mod.ID, "31/01/2030"), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Unknown module", method: http.MethodPost, path: "/assignments/create", token: teacherToken,
			body: body(999, "2030-01-31"), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Created", method: http.MethodPost, path: "/assignments/create", token: teacherToken,
			body: body(mod.ID, "2030-01-31"), wantCode: http.StatusCreated, wantData: message(t, "Assignment with title Concurrency successfully created"),
		},
		{name: "List", path: "/assignments/list", token: teacherToken, wantCode: http.StatusOK, wantData: marchallList(t, TitleSummary{ID: 1, Title: "Concurrency"})},
	})
}

func Test_gradeApi(t *testing.T) {
	app, svcs := setup(t, nil)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	student1 := testutil.CreateUser(t, svcs.UsrRepo, "student1", user.RoleStudent)
	student2 := testutil.CreateUser(t, svcs.UsrRepo, "student2", user.RoleStudent)
	asg := testutil.CreateAssignment(t, svcs.AsgRepo, "Concurrency", testutil.CreateModule(t, svcs.ModRepo, "Go", teacher))
	other := testutil.CreateAssignment(t, svcs.AsgRepo, "Generics", testutil.CreateModule(t, svcs.ModRepo, "More Go", teacher))
	testutil.CreateGrade(t, svcs.GrdRepo, student2, other, 55)

	teacherToken := testutil.Login(t, svcs, teacher)
	studentToken := testutil.Login(t, svcs, student1)

	body := func(fields map[string]interface{}) []byte { return marchallObj(t, fields) }

	runHttpTests(t, app, []httpTest{
		{
			name: "Teacher required", method: http.MethodPost, path: "/grades/create", token: studentToken,
			body: body(map[string]interface{}{"student_id": student1.ID, "assignment_id": asg.ID, "score": 90}), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthorised),
		},
		{
			name: "Missing score", method: http.MethodPost, path: "/grades/create", token: teacherToken,
			body: body(map[string]interface{}{"student_id": student1.ID, "assignment_id": asg.ID}), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Missing student", method: http.MethodPost, path: "/grades/create", token: teacherToken,
			body: body(map[string]interface{}{"assignment_id": asg.ID, "score": 90}), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Unknown assignment", method: http.MethodPost, path: "/grades/create", token: teacherToken,
			body: body(map[string]interface{}{"student_id": student1.ID, "assignment_id": 999, "score": 90}), wantCode: http.StatusUnprocessableEntity, wantData: marchallObj(t, errInvalidParams),
		},
		{
			name: "Zero score", method: http.MethodPost, path: "/grades/create", token: teacherToken,
			body:     body(map[string]interface{}{"student_id": student1.ID, "assignment_id": asg.ID, "score": 0}),
			wantCode: http.StatusCreated, wantData: message(t, grade.CreatedMessage(grade.Grade{StudentID: student1.ID, AssignmentID: asg.ID})),
		},
		{name: "View own grades", path: "/grades/view", token: studentToken, wantCode: http.StatusOK, wantData: marchallList(t, GradeSummary{AssignmentID: asg.ID, Score: 0})},
		{name: "Not a student", path: "/grades/view", token: teacherToken, wantCode: http.StatusUnprocessableEntity, wantData: message(t, grade.MsgNotAStudent)},
		{name: "Auth required", path: "/grades/view", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
	})
}

func Test_featureSwitchApi(t *testing.T) {
	app, svcs := setup(t, nil)
	invalid := message(t, featureswitch.MsgInvalidActive)
	path := "/feature_switch/" + testutil.HackerModeSwitch

	runHttpTests(t, app, []httpTest{
		{name: "Missing active", method: http.MethodPost, path: path, body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "Out of range", method: http.MethodPost, path: path, body: []byte(`{"active":2}`), wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "Not a number", method: http.MethodPost, path: path, body: []byte(`{"active":"on"}`), wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "Off", method: http.MethodPost, path: path, body: []byte(`{"active":0}`), wantCode: http.StatusOK, wantData: message(t, "Hacker mode turned off")},
		{name: "On", method: http.MethodPost, path: path, body: []byte(`{"active":1}`), wantCode: http.StatusOK, wantData: message(t, "Hacker mode turned on")},
		{name: "Off again", method: http.MethodPost, path: path, body: []byte(`{"active":0}`), wantCode: http.StatusOK, wantData: message(t, "Hacker mode turned off")},
	})

	active, err := svcs.SwitchSvc.IsActive(context.Background(), testutil.HackerModeSwitch)
	require.NoError(t, err)
	assert.False(t, active)
}

func Test_hackerMode(t *testing.T) {
	app, svcs := setup(t, nil)
	admin := testutil.CreateUser(t, svcs.UsrRepo, "admin", user.RoleAdmin)
	teacher := testutil.CreateUser(t, svcs.UsrRepo, "teacher", user.RoleTeacher)
	student := testutil.CreateUser(t, svcs.UsrRepo, "student", user.RoleStudent)
	testutil.SetSwitch(t, svcs.SwitchRepo, testutil.HackerModeSwitch, true)

	runHttpTests(t, app, []httpTest{
		{name: "List users without token", path: "/users/list", wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher, student)},
		{name: "Student token ignored", path: "/modules/list", token: testutil.Login(t, svcs, student), wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "Create module as teacher", method: http.MethodPost, path: "/modules/create",
			body: []byte(`{"title":"Go","description":"Learn Go"}`), wantCode: http.StatusCreated, wantData: message(t, "Module with title Go successfully created"),
		},
		{name: "View grades as teacher", path: "/grades/view", wantCode: http.StatusUnprocessableEntity, wantData: message(t, grade.MsgNotAStudent)},
	})

	mods, err := svcs.ModuleSvc.Query(context.Background())
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, teacher.ID, mods[0].TeacherID)
}

func Test_hackerMode_emptyDatabase(t *testing.T) {
	app, svcs := setup(t, nil)
	testutil.SetSwitch(t, svcs.SwitchRepo, testutil.HackerModeSwitch, true)

	runHttpTests(t, app, []httpTest{
		{name: "List users", path: "/users/list", wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "Create user", method: http.MethodPost, path: "/users/create",
			body: []byte(`{"username":"jane","password":"secret","role":"Student","first_name":"Jane","last_name":"Doe","email":"jane@doe.com"}`),
			wantCode: http.StatusCreated, wantData: message(t, "User with email jane@doe.com successfully created"),
		},
		{name: "Teacher operations need the teacher account", path: "/modules/list", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "View grades needs the teacher account", path: "/grades/view", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
	})

	usr := mustGetUser(t, svcs, "jane")
	assert.Equal(t, user.RoleStudent, usr.Role)
}
