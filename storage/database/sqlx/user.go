package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/user"
)

type userRepository struct {
	base
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DBConnector) user.Repository {
	return &userRepository{base: newBase(db)}
}

func (repo *userRepository) selectUsers() sq.SelectBuilder {
	return repo.sb.Select("id", "username", "role", "password_hash").From("users").OrderBy("id")
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedIDs ...int) error {
	// SELECT COUNT(*) FROM users WHERE username = ? AND id NOT IN (?,?)
	n, err := repo.count(ctx, repo.sb.Select("COUNT(*)").From("users").
		Where(sq.Eq{"username": username}).
		Where(notIn("id", excludedIDs)))
	if err != nil {
		return errors.Wrap(err, "checking username")
	}
	if n > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	id, err := repo.insert(ctx, repo.sb.Insert("users").
		Columns("username", "password_hash", "role").
		Values(usr.Username, usr.PasswordHash, usr.Role))
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = id
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	qb := repo.selectUsers()
	if filter.Search != "" {
		qb = qb.Where(ilike("username", filter.Search))
	}
	if filter.Role != "" {
		qb = qb.Where(sq.Eq{"role": filter.Role})
	}
	users := make([]user.User, 0)
	if err := repo.selectAll(ctx, &users, qb); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	if err := repo.get(ctx, &usr, repo.selectUsers().Where(sq.Eq{"id": id})); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	if err := repo.get(ctx, &usr, repo.selectUsers().Where(sq.Eq{"username": username})); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	return usr, nil
}

func (repo *userRepository) CountUsersByRole(ctx context.Context, role string) (int, error) {
	return repo.count(ctx, repo.sb.Select("COUNT(*)").From("users").Where(sq.Eq{"role": role}))
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	n, err := repo.exec(ctx, repo.sb.Update("users").
		Set("username", usr.Username).
		Set("role", usr.Role).
		Set("password_hash", usr.PasswordHash).
		Where(sq.Eq{"id": usr.ID}))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, repo.sb.Delete("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
