package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/module"
)

type moduleRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	TeacherID   null.Int    `db:"teacher_id"`
}

func (row moduleRow) toModule() module.Module {
	return module.Module{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description.String,
		TeacherID:   row.TeacherID.Int,
	}
}

type moduleRepository struct {
	db core.DB
}

var _ module.Repository = (*moduleRepository)(nil)

func NewModuleRepository(db core.DB) module.Repository {
	return &moduleRepository{db: db}
}

func (repo *moduleRepository) CreateModule(ctx context.Context, mod module.Module) (module.Module, error) {
	q := "INSERT INTO modules (title, description, teacher_id) VALUES ($1, $2, $3) RETURNING id"
	err := repo.db.GetContext(
		ctx, &mod.ID, q,
		mod.Title, null.StringFrom(mod.Description), null.NewInt(mod.TeacherID, mod.TeacherID != 0),
	)
	if err != nil {
		if pqErrorIs(err, foreignKeyViolation) {
			return module.Module{}, core.ErrInvalidReference
		}
		return module.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo *moduleRepository) QueryModules(ctx context.Context) ([]module.Module, error) {
	var rows []moduleRow
	q := "SELECT id, title, description, teacher_id FROM modules ORDER BY " + core.OrderByID.String()
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting modules")
	}
	mods := make([]module.Module, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, row.toModule())
	}
	return mods, nil
}
