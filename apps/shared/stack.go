// Package shared wires the stores and domain services selected by the configuration.
// Both the API server and the admin CLI run on top of it.
package shared

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/assignment"
	"github.com/teamunity/lms/core/auth"
	"github.com/teamunity/lms/core/featureswitch"
	"github.com/teamunity/lms/core/grade"
	"github.com/teamunity/lms/core/module"
	"github.com/teamunity/lms/core/session"
	"github.com/teamunity/lms/core/user"
	"github.com/teamunity/lms/storage/database"
	gormrepos "github.com/teamunity/lms/storage/database/gorm"
	inmemdb "github.com/teamunity/lms/storage/database/inmem"
	sqlxrepos "github.com/teamunity/lms/storage/database/sqlx"
	boltsession "github.com/teamunity/lms/storage/session/bolt"
	inmemsession "github.com/teamunity/lms/storage/session/inmem"
	redissession "github.com/teamunity/lms/storage/session/redis"
)

type (
	Repositories struct {
		Users       user.Repository
		Modules     module.Repository
		Assignments assignment.Repository
		Grades      grade.Repository
		Switches    featureswitch.Repository
	}

	Stack struct {
		Conf *core.Config

		// SQL is nil with the memory driver.
		SQL      *sql.DB
		Repos    Repositories
		Sessions session.Store

		UserSvc       *user.Service
		ModuleSvc     *module.Service
		AssignmentSvc *assignment.Service
		GradeSvc      *grade.Service
		SwitchSvc     *featureswitch.Service
		SessionMgr    *session.Manager
		Gate          *auth.Gate

		Pingers map[string]core.Pinger

		closers []func() error
	}
)

// NewStack opens the configured database and session store, then builds the services on top of them.
// With withSessions false no session store is opened (admin tasks).
func NewStack(ctx context.Context, conf *core.Config, withSessions bool) (*Stack, error) {
	s := &Stack{Conf: conf, Pingers: make(map[string]core.Pinger)}

	if err := s.openDatabase(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	if withSessions {
		if err := s.openSessions(); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	s.UserSvc = user.NewService(s.Repos.Users, validate, translator)
	s.ModuleSvc = module.NewService(s.Repos.Modules, validate, translator)
	s.AssignmentSvc = assignment.NewService(s.Repos.Assignments, validate, translator)
	s.GradeSvc = grade.NewService(s.Repos.Grades, validate, translator)
	s.SwitchSvc = featureswitch.NewService(s.Repos.Switches, validate, translator)
	if s.Sessions != nil {
		s.SessionMgr = session.NewManager(s.Sessions, s.UserSvc)
		s.Gate = auth.NewGate(s.SessionMgr, s.UserSvc, s.SwitchSvc, conf.HackerModeSwitch)
	}
	return s, nil
}

func (s *Stack) openDatabase(ctx context.Context) error {
	switch driver := s.Conf.Database.Driver; driver {
	case core.DriverMemory:
		db := inmemdb.Open()
		s.Repos = Repositories{
			Users:       inmemdb.NewUserRepository(db),
			Modules:     inmemdb.NewModuleRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
			Grades:      inmemdb.NewGradeRepository(db),
			Switches:    inmemdb.NewFeatureSwitchRepository(db),
		}
		s.Pingers["database"] = db

	case core.DriverSqlx, core.DriverGorm:
		sqlDB, err := database.SetUp(ctx, s.Conf)
		if err != nil {
			return errors.Wrap(err, "setting up database")
		}
		s.SQL = sqlDB
		s.closers = append(s.closers, sqlDB.Close)
		s.Pingers["database"] = sqlDB

		if driver == core.DriverSqlx {
			db := sqlx.NewDb(sqlDB, s.Conf.Database.Engine)
			s.Repos = Repositories{
				Users:       sqlxrepos.NewUserRepository(db),
				Modules:     sqlxrepos.NewModuleRepository(db),
				Assignments: sqlxrepos.NewAssignmentRepository(db),
				Grades:      sqlxrepos.NewGradeRepository(db),
				Switches:    sqlxrepos.NewFeatureSwitchRepository(db),
			}
			return nil
		}

		db, err := gormrepos.Open(sqlDB, s.Conf.Debug)
		if err != nil {
			return err
		}
		s.Repos = Repositories{
			Users:       gormrepos.NewUserRepository(db),
			Modules:     gormrepos.NewModuleRepository(db),
			Assignments: gormrepos.NewAssignmentRepository(db),
			Grades:      gormrepos.NewGradeRepository(db),
			Switches:    gormrepos.NewFeatureSwitchRepository(db),
		}

	default:
		return fmt.Errorf("unknown database driver %q", driver)
	}
	return nil
}

func (s *Stack) openSessions() error {
	switch backend := s.Conf.Session.Backend; backend {
	case core.SessionMemory:
		store := inmemsession.NewStore()
		s.Sessions = store
		s.Pingers["sessions"] = store

	case core.SessionBolt:
		store, err := boltsession.Open(s.Conf.Session.BoltPath)
		if err != nil {
			return errors.Wrap(err, "opening bolt session store")
		}
		s.Sessions = store
		s.Pingers["sessions"] = store
		s.closers = append(s.closers, store.Close)

	case core.SessionRedis:
		store, err := redissession.Open(s.Conf.Session.RedisURL, s.Conf.Session.KeyPrefix)
		if err != nil {
			return errors.Wrap(err, "opening redis session store")
		}
		s.Sessions = store
		s.Pingers["sessions"] = store
		s.closers = append(s.closers, store.Close)

	default:
		return fmt.Errorf("unknown session backend %q", backend)
	}
	return nil
}

// Close releases the stores in reverse opening order and returns the first error.
func (s *Stack) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
