package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/user"
)

func newUserModel(usr user.User) userModel {
	return userModel{
		ID:           usr.ID,
		Username:     usr.Username,
		PasswordHash: usr.PasswordHash,
		RoleID:       int(usr.Role),
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		Email:        usr.Email,
		AuthToken:    strOrNil(usr.AuthToken),
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
}

func (m userModel) toUser() user.User {
	return user.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         user.Role(m.RoleID),
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		AuthToken:    deref(m.AuthToken),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...int) error {
	var models []userModel
	q := repo.db.WithContext(ctx).Where("username = ? OR email = ?", username, email)
	if len(excludedIDs) > 0 {
		q = q.Where("id NOT IN ?", excludedIDs)
	}
	if err := q.Find(&models).Error; err != nil {
		return errors.Wrap(err, "selecting users")
	}

	var unameTaken bool
	for _, m := range models {
		if m.Email == email {
			return user.ErrEmailExists
		}
		if m.Username == username {
			unameTaken = true
		}
	}
	if unameTaken {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	m := newUserModel(usr)
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.User{}, user.ErrConflict
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return m.toUser(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	var models []userModel
	q := repo.db.WithContext(ctx).Order(core.OrderByID.String())
	if filter != nil && filter.Role != 0 {
		q = q.Where("role_id = ?", int(filter.Role))
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := repo.db.WithContext(ctx)
	switch {
	case filter.ID != 0:
		q = q.Where("id = ?", filter.ID)
	case filter.Username != "":
		q = q.Where("username = ?", filter.Username)
	case filter.Email != "":
		q = q.Where("email = ?", filter.Email)
	case filter.AuthToken != "":
		q = q.Where("auth_token = ?", filter.AuthToken)
	default:
		return user.User{}, user.ErrNotFound
	}

	var m userModel
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return m.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	m := newUserModel(usr)
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userModel{ID: m.ID}).Select("*").Omit("id", "created_at").Updates(&m)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return user.ErrConflict
			}
			return errors.Wrap(res.Error, "updating user")
		}
		if res.RowsAffected == 0 {
			return user.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}
