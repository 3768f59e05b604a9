package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/assignment"
)

type assignmentRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	ModuleID    int         `db:"module_id"`
	DueDate     null.Time   `db:"due_date"`
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description.String,
		ModuleID:    row.ModuleID,
		DueDate:     row.DueDate.Time.UTC(),
	}
}

type assignmentRepository struct {
	db core.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db core.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	q := "INSERT INTO assignments (title, description, module_id, due_date) VALUES ($1, $2, $3, $4) RETURNING id"
	err := repo.db.GetContext(
		ctx, &asg.ID, q,
		asg.Title, null.StringFrom(asg.Description), asg.ModuleID, null.NewTime(asg.DueDate, !asg.DueDate.IsZero()),
	)
	if err != nil {
		if pqErrorIs(err, foreignKeyViolation) {
			return assignment.Assignment{}, core.ErrInvalidReference
		}
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	var rows []assignmentRow
	q := "SELECT id, title, description, module_id, due_date FROM assignments ORDER BY " + core.OrderByID.String()
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.toAssignment())
	}
	return asgs, nil
}
