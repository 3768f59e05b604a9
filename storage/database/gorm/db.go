// Package gormrepos implements the repositories with gorm over the schema of the goose migrations.
package gormrepos

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type (
	userModel struct {
		ID           int       `gorm:"primaryKey"`
		Username     string    `gorm:"size:80;not null"`
		PasswordHash []byte    `gorm:"not null"`
		RoleID       int       `gorm:"not null"`
		FirstName    string    `gorm:"size:80;not null"`
		LastName     string    `gorm:"size:80;not null"`
		Email        string    `gorm:"size:120;not null"`
		AuthToken    *string   `gorm:"size:48"`
		CreatedAt    time.Time `gorm:"not null"`
		UpdatedAt    time.Time `gorm:"not null"`
	}

	moduleModel struct {
		ID          int    `gorm:"primaryKey"`
		Title       string `gorm:"size:120;not null"`
		Description *string
		TeacherID   *int
		Teacher     *userModel `gorm:"foreignKey:TeacherID"`
	}

	assignmentModel struct {
		ID          int    `gorm:"primaryKey"`
		Title       string `gorm:"size:120;not null"`
		Description *string
		ModuleID    int          `gorm:"not null"`
		Module      *moduleModel `gorm:"foreignKey:ModuleID"`
		DueDate     *time.Time   `gorm:"type:date"`
	}

	gradeModel struct {
		ID           int              `gorm:"primaryKey"`
		Score        float64          `gorm:"not null"`
		StudentID    int              `gorm:"not null"`
		Student      *userModel       `gorm:"foreignKey:StudentID"`
		AssignmentID int              `gorm:"not null"`
		Assignment   *assignmentModel `gorm:"foreignKey:AssignmentID"`
	}

	featureSwitchModel struct {
		ID     int    `gorm:"primaryKey"`
		Name   string `gorm:"size:80;not null"`
		Active bool   `gorm:"not null;default:false"`
	}
)

func (userModel) TableName() string          { return "users" }
func (moduleModel) TableName() string        { return "modules" }
func (assignmentModel) TableName() string    { return "assignments" }
func (gradeModel) TableName() string         { return "grades" }
func (featureSwitchModel) TableName() string { return "feature_switches" }

// Open wraps an open postgres connection. Driver errors are translated to gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated.
func Open(sqlDB *sql.DB, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening gorm")
	}
	return db, nil
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
