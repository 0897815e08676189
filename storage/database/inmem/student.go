package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escondite/core/student"
)

type studentRepository struct {
	db    *studentTable
	users *userTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student, users: db.user}
}

// query must be called with the table lock held.
func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, repo.withUsername(*s))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) withUsername(s student.Student) student.Student {
	s.Username = null.String{}
	if !s.UserID.Valid {
		return s
	}
	repo.users.mutex.RLock()
	defer repo.users.mutex.RUnlock()
	if usr, ok := repo.users.table[s.UserID.Int]; ok {
		s.Username = null.StringFrom(usr.Username)
	}
	return s
}

func (repo *studentRepository) CheckNameUniqueness(_ context.Context, name string, excludedIDs ...int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.table {
		if s.Name == name && !isExcluded(s.ID, excludedIDs) {
			return student.ErrNameExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pk++
	s.ID = repo.db.pk
	s.Username = null.String{}
	repo.db.table[s.ID] = &s
	return repo.withUsername(s), nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.query() {
		if filter.Search != "" && !containsFold(s.Name, filter.Search) && !containsFold(s.Level, filter.Search) {
			continue
		}
		if filter.Level != "" && s.Level != filter.Level {
			continue
		}
		students = append(students, s)
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return repo.withUsername(*s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByName(_ context.Context, name string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.query() {
		if s.Name == name {
			return s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.Username = null.String{}
	repo.db.table[s.ID] = &s
	return repo.withUsername(s), nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

// nameOf returns the name of student id, if it still exists.
func (t *studentTable) nameOf(id int) (string, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	if s, ok := t.table[id]; ok {
		return s.Name, true
	}
	return "", false
}

func (t *studentTable) idOf(name string) (int, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	for _, s := range t.table {
		if s.Name == name {
			return s.ID, true
		}
	}
	return 0, false
}
