package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/assignment"
	"github.com/teamunity/lms/core/featureswitch"
	"github.com/teamunity/lms/core/grade"
	"github.com/teamunity/lms/core/module"
)

type moduleRepository struct {
	db *gorm.DB
}

var _ module.Repository = (*moduleRepository)(nil)

func NewModuleRepository(db *gorm.DB) module.Repository {
	return &moduleRepository{db: db}
}

func (repo *moduleRepository) CreateModule(ctx context.Context, mod module.Module) (module.Module, error) {
	m := moduleModel{Title: mod.Title, Description: strOrNil(mod.Description)}
	if mod.TeacherID != 0 {
		m.TeacherID = &mod.TeacherID
	}
	if err := repo.db.WithContext(ctx).Omit("Teacher").Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return module.Module{}, core.ErrInvalidReference
		}
		return module.Module{}, errors.Wrap(err, "inserting module")
	}
	mod.ID = m.ID
	return mod, nil
}

func (repo *moduleRepository) QueryModules(ctx context.Context) ([]module.Module, error) {
	var models []moduleModel
	if err := repo.db.WithContext(ctx).Order(core.OrderByID.String()).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting modules")
	}
	mods := make([]module.Module, 0, len(models))
	for _, m := range models {
		mod := module.Module{ID: m.ID, Title: m.Title, Description: deref(m.Description)}
		if m.TeacherID != nil {
			mod.TeacherID = *m.TeacherID
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

type assignmentRepository struct {
	db *gorm.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *gorm.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	m := assignmentModel{Title: asg.Title, Description: strOrNil(asg.Description), ModuleID: asg.ModuleID}
	if !asg.DueDate.IsZero() {
		m.DueDate = &asg.DueDate
	}
	if err := repo.db.WithContext(ctx).Omit("Module").Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return assignment.Assignment{}, core.ErrInvalidReference
		}
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	asg.ID = m.ID
	return asg, nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	var models []assignmentModel
	if err := repo.db.WithContext(ctx).Order(core.OrderByID.String()).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(models))
	for _, m := range models {
		asg := assignment.Assignment{ID: m.ID, Title: m.Title, Description: deref(m.Description), ModuleID: m.ModuleID}
		if m.DueDate != nil {
			asg.DueDate = m.DueDate.UTC()
		}
		asgs = append(asgs, asg)
	}
	return asgs, nil
}

type gradeRepository struct {
	db *gorm.DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *gorm.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	m := gradeModel{Score: grd.Score, StudentID: grd.StudentID, AssignmentID: grd.AssignmentID}
	if err := repo.db.WithContext(ctx).Omit("Student", "Assignment").Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return grade.Grade{}, core.ErrInvalidReference
		}
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	grd.ID = m.ID
	return grd, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	var models []gradeModel
	q := repo.db.WithContext(ctx).Order(core.OrderByID.String())
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	grds := make([]grade.Grade, 0, len(models))
	for _, m := range models {
		grds = append(grds, grade.Grade{ID: m.ID, Score: m.Score, StudentID: m.StudentID, AssignmentID: m.AssignmentID})
	}
	return grds, nil
}

type featureSwitchRepository struct {
	db *gorm.DB
}

var _ featureswitch.Repository = (*featureSwitchRepository)(nil)

func NewFeatureSwitchRepository(db *gorm.DB) featureswitch.Repository {
	return &featureSwitchRepository{db: db}
}

func (repo *featureSwitchRepository) GetFeatureSwitch(ctx context.Context, name string) (featureswitch.FeatureSwitch, error) {
	var m featureSwitchModel
	if err := repo.db.WithContext(ctx).First(&m, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return featureswitch.FeatureSwitch{}, featureswitch.ErrNotFound
		}
		return featureswitch.FeatureSwitch{}, errors.Wrap(err, "selecting feature switch")
	}
	return featureswitch.FeatureSwitch(m), nil
}

func (repo *featureSwitchRepository) SaveFeatureSwitch(ctx context.Context, fs featureswitch.FeatureSwitch) (featureswitch.FeatureSwitch, error) {
	m := featureSwitchModel(fs)
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing featureSwitchModel
		err := tx.First(&existing, "name = ?", m.Name).Error
		switch {
		case err == nil:
			m.ID = existing.ID
			return tx.Model(&existing).Update("active", m.Active).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&m).Error
		default:
			return err
		}
	})
	if err != nil {
		return featureswitch.FeatureSwitch{}, errors.Wrap(err, "saving feature switch")
	}
	return featureswitch.FeatureSwitch(m), nil
}
