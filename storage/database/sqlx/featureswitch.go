package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/featureswitch"
)

type featureSwitchRepository struct {
	db core.DB
}

var _ featureswitch.Repository = (*featureSwitchRepository)(nil)

func NewFeatureSwitchRepository(db core.DB) featureswitch.Repository {
	return &featureSwitchRepository{db: db}
}

func (repo *featureSwitchRepository) GetFeatureSwitch(ctx context.Context, name string) (featureswitch.FeatureSwitch, error) {
	var fs featureswitch.FeatureSwitch
	q := "SELECT id, name, active FROM feature_switches WHERE name = $1"
	if err := repo.db.GetContext(ctx, &fs, q, name); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return featureswitch.FeatureSwitch{}, featureswitch.ErrNotFound
		}
		return featureswitch.FeatureSwitch{}, errors.Wrap(err, "selecting feature switch")
	}
	return fs, nil
}

func (repo *featureSwitchRepository) SaveFeatureSwitch(ctx context.Context, fs featureswitch.FeatureSwitch) (featureswitch.FeatureSwitch, error) {
	q := `INSERT INTO feature_switches (name, active) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET active = EXCLUDED.active RETURNING id`
	if err := repo.db.GetContext(ctx, &fs.ID, q, fs.Name, fs.Active); err != nil {
		return featureswitch.FeatureSwitch{}, errors.Wrap(err, "upserting feature switch")
	}
	return fs, nil
}
