package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/student"
)

type studentRepository struct {
	base
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DBConnector) student.Repository {
	return &studentRepository{base: newBase(db)}
}

func (repo *studentRepository) selectStudents() sq.SelectBuilder {
	return repo.sb.Select("s.id", "s.name", "s.age", "s.level", "s.user_id", "u.username").
		From("students s").
		LeftJoin("users u ON s.user_id = u.id").
		OrderBy("s.id")
}

func (repo *studentRepository) CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...int) error {
	n, err := repo.count(ctx, repo.sb.Select("COUNT(*)").From("students").
		Where(sq.Eq{"name": name}).
		Where(notIn("id", excludedIDs)))
	if err != nil {
		return errors.Wrap(err, "checking student name")
	}
	if n > 0 {
		return student.ErrNameExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	id, err := repo.insert(ctx, repo.sb.Insert("students").
		Columns("name", "age", "level", "user_id").
		Values(s.Name, s.Age, s.Level, s.UserID))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.GetStudentByID(ctx, id)
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	qb := repo.selectStudents()
	if filter.Search != "" {
		qb = qb.Where(sq.Or{ilike("s.name", filter.Search), ilike("s.level", filter.Search)})
	}
	if filter.Level != "" {
		qb = qb.Where(sq.Eq{"s.level": filter.Level})
	}
	students := make([]student.Student, 0)
	if err := repo.selectAll(ctx, &students, qb); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var s student.Student
	if err := repo.get(ctx, &s, repo.selectStudents().Where(sq.Eq{"s.id": id})); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return s, nil
}

func (repo *studentRepository) GetStudentByName(ctx context.Context, name string) (student.Student, error) {
	var s student.Student
	if err := repo.get(ctx, &s, repo.selectStudents().Where(sq.Eq{"s.name": name})); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return s, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	n, err := repo.exec(ctx, repo.sb.Update("students").
		Set("name", s.Name).
		Set("age", s.Age).
		Set("level", s.Level).
		Set("user_id", s.UserID).
		Where(sq.Eq{"id": s.ID}))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, s.ID)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, repo.sb.Delete("students").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n == 0 {
		return student.ErrNotFound
	}
	return nil
}
