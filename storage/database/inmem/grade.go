package inmemdb

import (
	"context"
	"sort"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[grd.StudentID]; !ok {
		return grade.Grade{}, core.ErrInvalidReference
	}
	if _, ok := repo.db.assignments[grd.AssignmentID]; !ok {
		return grade.Grade{}, core.ErrInvalidReference
	}
	grd.ID = repo.db.nextID("grades")
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grds := make([]grade.Grade, 0)
	for _, grd := range repo.db.grades {
		if filter.StudentID != 0 && grd.StudentID != filter.StudentID {
			continue
		}
		grds = append(grds, *grd)
	}
	sort.Slice(grds, func(i, j int) bool { return grds[i].ID < grds[j].ID })
	return grds, nil
}
