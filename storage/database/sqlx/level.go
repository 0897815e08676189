package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/level"
)

type levelRepository struct {
	base
}

var _ level.Repository = (*levelRepository)(nil)

func NewLevelRepository(db core.DBConnector) level.Repository {
	return &levelRepository{base: newBase(db)}
}

func (repo *levelRepository) CreateLevel(ctx context.Context, name string) (level.Level, error) {
	n, err := repo.count(ctx, repo.sb.Select("COUNT(*)").From("levels").Where(sq.Eq{"name": name}))
	if err != nil {
		return level.Level{}, errors.Wrap(err, "checking level name")
	}
	if n > 0 {
		return level.Level{}, level.ErrNameExists
	}
	id, err := repo.insert(ctx, repo.sb.Insert("levels").Columns("name").Values(name))
	if err != nil {
		return level.Level{}, errors.Wrap(err, "inserting level")
	}
	return level.Level{ID: id, Name: name}, nil
}

const insertLevelIfAbsentQuery = `
INSERT INTO levels (name)
SELECT CAST(? AS TEXT)
WHERE NOT EXISTS (SELECT 1 FROM levels WHERE name = ?)`

func (repo *levelRepository) CreateLevelsIfAbsent(ctx context.Context, names ...string) error {
	return repo.withTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(insertLevelIfAbsentQuery)
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, q, name, name); err != nil {
				return errors.Wrapf(err, "inserting level %s", name)
			}
		}
		return nil
	})
}

func (repo *levelRepository) QueryLevels(ctx context.Context) ([]level.Level, error) {
	levels := make([]level.Level, 0)
	if err := repo.selectAll(ctx, &levels, repo.sb.Select("id", "name").From("levels").OrderBy("id")); err != nil {
		return nil, errors.Wrap(err, "querying levels")
	}
	return levels, nil
}

func (repo *levelRepository) GetLevelByName(ctx context.Context, name string) (level.Level, error) {
	var lvl level.Level
	if err := repo.get(ctx, &lvl, repo.sb.Select("id", "name").From("levels").Where(sq.Eq{"name": name})); err != nil {
		return level.Level{}, trapNoRowsErr(err, level.ErrNotFound)
	}
	return lvl, nil
}

func (repo *levelRepository) RenameLevel(ctx context.Context, oldName, newName string) error {
	return repo.withTx(ctx, func(tx *sqlx.Tx) error {
		q, args, err := repo.sb.Update("levels").Set("name", newName).Where(sq.Eq{"name": oldName}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return errors.Wrap(err, "renaming level")
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return level.ErrNotFound
		}

		q, args, err = repo.sb.Update("students").Set("level", newName).Where(sq.Eq{"level": oldName}).ToSql()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, q, args...)
		return errors.Wrap(err, "moving students to renamed level")
	})
}

func (repo *levelRepository) DeleteLevel(ctx context.Context, name string) error {
	n, err := repo.exec(ctx, repo.sb.Delete("levels").Where(sq.Eq{"name": name}))
	if err != nil {
		return errors.Wrap(err, "deleting level")
	}
	if n == 0 {
		return level.ErrNotFound
	}
	return nil
}
