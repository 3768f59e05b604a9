package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/user"
)

const userColumns = "id, username, password_hash, role_id, first_name, last_name, email, auth_token, created_at, updated_at"

type userRow struct {
	ID           int         `db:"id"`
	Username     string      `db:"username"`
	PasswordHash []byte      `db:"password_hash"`
	RoleID       int         `db:"role_id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Email        string      `db:"email"`
	AuthToken    null.String `db:"auth_token"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Username:     usr.Username,
		PasswordHash: usr.PasswordHash,
		RoleID:       int(usr.Role),
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		Email:        usr.Email,
		AuthToken:    null.NewString(usr.AuthToken, usr.AuthToken != ""),
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         user.Role(row.RoleID),
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		AuthToken:    row.AuthToken.String,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...int) error {
	excluded := make([]int64, 0, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded = append(excluded, int64(id))
	}

	var rows []userRow
	q := "SELECT " + userColumns + " FROM users WHERE (username = $1 OR email = $2) AND NOT (id = ANY($3))"
	if err := repo.db.SelectContext(ctx, &rows, q, username, email, pq.Array(excluded)); err != nil {
		return errors.Wrap(err, "selecting users")
	}

	var unameTaken bool
	for _, row := range rows {
		if row.Email == email {
			return user.ErrEmailExists
		}
		if row.Username == username {
			unameTaken = true
		}
	}
	if unameTaken {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	q := `INSERT INTO users (username, password_hash, role_id, first_name, last_name, email, auth_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := repo.db.GetContext(
		ctx, &usr.ID, q,
		row.Username, row.PasswordHash, row.RoleID, row.FirstName, row.LastName, row.Email, row.AuthToken,
		row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		if pqErrorIs(err, uniqueViolation) {
			return user.User{}, user.ErrConflict
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	var (
		rows []userRow
		args []interface{}
	)
	q := "SELECT " + userColumns + " FROM users"
	if filter != nil && filter.Role != 0 {
		q += " WHERE role_id = $1"
		args = append(args, int(filter.Role))
	}
	q += " ORDER BY " + core.OrderByID.String()

	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		where string
		arg   interface{}
	)
	switch {
	case filter.ID != 0:
		where, arg = "id = $1", filter.ID
	case filter.Username != "":
		where, arg = "username = $1", filter.Username
	case filter.Email != "":
		where, arg = "email = $1", strings.ToLower(filter.Email)
	case filter.AuthToken != "":
		where, arg = "auth_token = $1", filter.AuthToken
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := repo.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users WHERE "+where, arg); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	err := inTx(ctx, repo.db, func(tx core.DBExecutor) error {
		q := `UPDATE users SET username = $1, password_hash = $2, role_id = $3, first_name = $4, last_name = $5,
			email = $6, auth_token = $7, updated_at = $8 WHERE id = $9`
		res, err := tx.ExecContext(
			ctx, q,
			row.Username, row.PasswordHash, row.RoleID, row.FirstName, row.LastName, row.Email, row.AuthToken,
			row.UpdatedAt, row.ID,
		)
		if err != nil {
			if pqErrorIs(err, uniqueViolation) {
				return user.ErrConflict
			}
			return errors.Wrap(err, "updating user")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return user.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}
