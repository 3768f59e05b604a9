package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/assignment"
	"github.com/teamunity/lms/core/auth"
	"github.com/teamunity/lms/core/featureswitch"
	"github.com/teamunity/lms/core/grade"
	"github.com/teamunity/lms/core/module"
	"github.com/teamunity/lms/core/session"
	"github.com/teamunity/lms/core/user"
	inmemdb "github.com/teamunity/lms/storage/database/inmem"
	inmemsession "github.com/teamunity/lms/storage/session/inmem"
)

const HackerModeSwitch = "hacker_mode"

// Services wires every domain service over the in-memory stores.
type Services struct {
	DB       *inmemdb.DB
	Sessions *inmemsession.Store

	UsrRepo    user.Repository
	ModRepo    module.Repository
	AsgRepo    assignment.Repository
	GrdRepo    grade.Repository
	SwitchRepo featureswitch.Repository

	UserSvc       *user.Service
	ModuleSvc     *module.Service
	AssignmentSvc *assignment.Service
	GradeSvc      *grade.Service
	SwitchSvc     *featureswitch.Service
	SessionMgr    *session.Manager
	Gate          *auth.Gate
}

func NewServices(t *testing.T, opts ...auth.Option) *Services {
	t.Helper()
	user.HashCost = bcrypt.MinCost

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db := inmemdb.Open()
	svcs := &Services{
		DB:         db,
		Sessions:   inmemsession.NewStore(),
		UsrRepo:    inmemdb.NewUserRepository(db),
		ModRepo:    inmemdb.NewModuleRepository(db),
		AsgRepo:    inmemdb.NewAssignmentRepository(db),
		GrdRepo:    inmemdb.NewGradeRepository(db),
		SwitchRepo: inmemdb.NewFeatureSwitchRepository(db),
	}
	svcs.UserSvc = user.NewService(svcs.UsrRepo, validate, translator)
	svcs.ModuleSvc = module.NewService(svcs.ModRepo, validate, translator)
	svcs.AssignmentSvc = assignment.NewService(svcs.AsgRepo, validate, translator)
	svcs.GradeSvc = grade.NewService(svcs.GrdRepo, validate, translator)
	svcs.SwitchSvc = featureswitch.NewService(svcs.SwitchRepo, validate, translator)
	svcs.SessionMgr = session.NewManager(svcs.Sessions, svcs.UserSvc)
	svcs.Gate = auth.NewGate(svcs.SessionMgr, svcs.UserSvc, svcs.SwitchSvc, HackerModeSwitch, opts...)
	return svcs
}

// CreateUser stores a User with the given role; its password equals its username unless pwd is set.
func CreateUser(t *testing.T, repo user.Repository, uname string, role user.Role, pwd ...string) user.User {
	t.Helper()
	password := uname
	if len(pwd) > 0 {
		password = pwd[0]
	}
	now := time.Now().UTC()
	usr := user.User{
		Username:  uname,
		FirstName: uname + "-first",
		LastName:  uname + "-last",
		Email:     uname + "@lms.test",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(password); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if err := usr.RegenerateToken(); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// Login opens a session for usr and returns its bearer token.
func Login(t *testing.T, svcs *Services, usr user.User) string {
	t.Helper()
	err := svcs.Sessions.Save(context.Background(), session.Session{Token: usr.AuthToken, UserID: usr.ID, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	return usr.AuthToken
}

func CreateModule(t *testing.T, repo module.Repository, title string, teacher user.User) module.Module {
	t.Helper()
	mod, err := repo.CreateModule(context.Background(), module.Module{Title: title, Description: title + " description", TeacherID: teacher.ID})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

func CreateAssignment(t *testing.T, repo assignment.Repository, title string, mod module.Module) assignment.Assignment {
	t.Helper()
	asg, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		Title:       title,
		Description: title + " description",
		ModuleID:    mod.ID,
		DueDate:     time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateGrade(t *testing.T, repo grade.Repository, student user.User, asg assignment.Assignment, score float64) grade.Grade {
	t.Helper()
	grd, err := repo.CreateGrade(context.Background(), grade.Grade{Score: score, StudentID: student.ID, AssignmentID: asg.ID})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return grd
}

// SetSwitch turns the named feature switch on or off.
func SetSwitch(t *testing.T, repo featureswitch.Repository, name string, active bool) {
	t.Helper()
	fs, err := repo.GetFeatureSwitch(context.Background(), name)
	if err != nil {
		fs = featureswitch.FeatureSwitch{Name: name}
	}
	fs.Active = active
	if _, err = repo.SaveFeatureSwitch(context.Background(), fs); err != nil {
		t.Fatalf("SetSwitch() failed: %v", err)
	}
}
