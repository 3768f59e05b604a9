package inmemdb

import (
	"context"

	"github.com/teamunity/lms/core/featureswitch"
)

type featureSwitchRepository struct {
	db *DB
}

var _ featureswitch.Repository = (*featureSwitchRepository)(nil)

func NewFeatureSwitchRepository(db *DB) featureswitch.Repository {
	return &featureSwitchRepository{db: db}
}

func (repo *featureSwitchRepository) GetFeatureSwitch(_ context.Context, name string) (featureswitch.FeatureSwitch, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if fs, ok := repo.db.switches[name]; ok {
		return *fs, nil
	}
	return featureswitch.FeatureSwitch{}, featureswitch.ErrNotFound
}

func (repo *featureSwitchRepository) SaveFeatureSwitch(_ context.Context, fs featureswitch.FeatureSwitch) (featureswitch.FeatureSwitch, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.switches[fs.Name]; ok {
		fs.ID = orig.ID
	} else {
		fs.ID = repo.db.nextID("feature_switches")
	}
	repo.db.switches[fs.Name] = &fs
	return fs, nil
}
