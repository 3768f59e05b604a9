package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap"

	. "github.com/teamunity/lms/apps/api/echo"
	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/auth"
	"github.com/teamunity/lms/core/user"
	logsvc "github.com/teamunity/lms/services/logger"
	"github.com/teamunity/lms/testutil"
)

type httpErr struct {
	Message string `json:"message"`
}

var (
	errInvalidToken  = httpErr{Message: core.MsgInvalidToken}
	errNotAuthorised = httpErr{Message: core.MsgNotAuthorised}
	errInvalidParams = httpErr{Message: core.MsgInvalidParams}
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func setup(t *testing.T, pingers map[string]core.Pinger, opts ...auth.Option) (*Server, *testutil.Services) {
	t.Helper()
	svcs := testutil.NewServices(t, opts...)

	conf := &core.Config{
		Env:              "TEST",
		TestMode:         true,
		HackerModeSwitch: testutil.HackerModeSwitch,
		Server:           core.ServerConfig{DisableReqLogs: true},
	}
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)

	if pingers == nil {
		pingers = map[string]core.Pinger{"database": svcs.DB, "sessions": svcs.Sessions}
	}

	app := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       svcs.UserSvc,
		ModuleSvc:     svcs.ModuleSvc,
		AssignmentSvc: svcs.AssignmentSvc,
		GradeSvc:      svcs.GradeSvc,
		SwitchSvc:     svcs.SwitchSvc,
		SessionMgr:    svcs.SessionMgr,
		Gate:          svcs.Gate,
		Pingers:       pingers,
	})
	return app, svcs
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func runHttpTests(t *testing.T, app http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func message(t *testing.T, msg string) []byte {
	return marchallObj(t, httpErr{Message: msg})
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func mustGetUser(t *testing.T, svcs *testutil.Services, uname string) user.User {
	t.Helper()
	usr, err := svcs.UserSvc.GetByUsername(context.Background(), uname)
	if err != nil {
		t.Fatalf("mustGetUser(%s): %v", uname, err)
	}
	return usr
}
