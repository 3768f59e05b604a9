package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/grade"
)

type gradeRow struct {
	ID           int     `db:"id"`
	Score        float64 `db:"score"`
	StudentID    int     `db:"student_id"`
	AssignmentID int     `db:"assignment_id"`
}

type gradeRepository struct {
	db core.DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db core.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	q := "INSERT INTO grades (score, student_id, assignment_id) VALUES ($1, $2, $3) RETURNING id"
	if err := repo.db.GetContext(ctx, &grd.ID, q, grd.Score, grd.StudentID, grd.AssignmentID); err != nil {
		if pqErrorIs(err, foreignKeyViolation) {
			return grade.Grade{}, core.ErrInvalidReference
		}
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return grd, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	var args []interface{}
	q := "SELECT id, score, student_id, assignment_id FROM grades"
	if filter.StudentID != 0 {
		q += " WHERE student_id = $1"
		args = append(args, filter.StudentID)
	}
	q += " ORDER BY " + core.OrderByID.String()

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	grds := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grds = append(grds, grade.Grade(row))
	}
	return grds, nil
}
