package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/class"
)

type classRepository struct {
	base
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db core.DBConnector) class.Repository {
	return &classRepository{base: newBase(db)}
}

func (repo *classRepository) selectClasses() sq.SelectBuilder {
	return repo.sb.Select("id", "name", "date", "professor").From("classes").OrderBy("date", "id")
}

func (repo *classRepository) CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...int) error {
	n, err := repo.count(ctx, repo.sb.Select("COUNT(*)").From("classes").
		Where(sq.Eq{"name": name}).
		Where(notIn("id", excludedIDs)))
	if err != nil {
		return errors.Wrap(err, "checking class name")
	}
	if n > 0 {
		return class.ErrNameExists
	}
	return nil
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	id, err := repo.insert(ctx, repo.sb.Insert("classes").
		Columns("name", "date", "professor").
		Values(c.Name, c.Date, c.Professor))
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	c.ID = id
	return c, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context) ([]class.Class, error) {
	classes := make([]class.Class, 0)
	if err := repo.selectAll(ctx, &classes, repo.selectClasses()); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int) (class.Class, error) {
	var c class.Class
	if err := repo.get(ctx, &c, repo.selectClasses().Where(sq.Eq{"id": id})); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound)
	}
	return c, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	n, err := repo.exec(ctx, repo.sb.Update("classes").
		Set("name", c.Name).
		Set("date", c.Date).
		Set("professor", c.Professor).
		Where(sq.Eq{"id": c.ID}))
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return c, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, repo.sb.Delete("classes").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n == 0 {
		return class.ErrNotFound
	}
	return nil
}
