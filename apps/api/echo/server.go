package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/assignment"
	"github.com/teamunity/lms/core/auth"
	"github.com/teamunity/lms/core/featureswitch"
	"github.com/teamunity/lms/core/grade"
	"github.com/teamunity/lms/core/module"
	"github.com/teamunity/lms/core/session"
	"github.com/teamunity/lms/core/user"
)

const healthCheckTimeout = 2 * time.Second

type (
	ServerDeps struct {
		Conf      *core.Config
		Logger    core.Logger
		ReqLogger *zap.Logger // request lines; nil disables them

		UserSvc       *user.Service
		ModuleSvc     *module.Service
		AssignmentSvc *assignment.Service
		GradeSvc      *grade.Service
		SwitchSvc     *featureswitch.Service
		SessionMgr    *session.Manager
		Gate          *auth.Gate

		// Pingers are the backing stores checked by /healthz, by name.
		Pingers map[string]core.Pinger
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs && s.deps.ReqLogger != nil {
		s.app.Use(requestLogger(s.deps.ReqLogger))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/healthz", s.healthz)

	registerSessionAPI(s.app, s.deps.SessionMgr)
	registerUserAPI(s.app, s.deps.Gate, s.deps.UserSvc)
	registerModuleAPI(s.app, s.deps.Gate, s.deps.ModuleSvc)
	registerAssignmentAPI(s.app, s.deps.Gate, s.deps.AssignmentSvc)
	registerGradeAPI(s.app, s.deps.Gate, s.deps.GradeSvc)
	registerFeatureSwitchAPI(s.app, s.deps.SwitchSvc, conf.HackerModeSwitch)
}

// Start listens until the server is shut down; failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "hi!", "status": "up"})
}

func (s *Server) healthz(ctx echo.Context) error {
	rctx, cancel := context.WithTimeout(ctx.Request().Context(), healthCheckTimeout)
	defer cancel()

	for name, pinger := range s.deps.Pingers {
		if err := pinger.PingContext(rctx); err != nil {
			s.deps.Logger.Error("health check failed", err, map[string]interface{}{"store": name})
			return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down"})
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "up"})
}
