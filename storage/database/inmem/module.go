package inmemdb

import (
	"context"
	"sort"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/module"
)

type moduleRepository struct {
	db *DB
}

var _ module.Repository = (*moduleRepository)(nil)

func NewModuleRepository(db *DB) module.Repository {
	return &moduleRepository{db: db}
}

func (repo *moduleRepository) CreateModule(_ context.Context, mod module.Module) (module.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[mod.TeacherID]; !ok {
		return module.Module{}, core.ErrInvalidReference
	}
	mod.ID = repo.db.nextID("modules")
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *moduleRepository) QueryModules(context.Context) ([]module.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := make([]module.Module, 0, len(repo.db.modules))
	for _, mod := range repo.db.modules {
		mods = append(mods, *mod)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
	return mods, nil
}
