package inmemdb

import (
	"context"

	"github.com/trezcool/escondite/core/level"
)

type levelRepository struct {
	db       *levelTable
	students *studentTable
}

var _ level.Repository = (*levelRepository)(nil)

func NewLevelRepository(db *DB) level.Repository {
	return &levelRepository{db: db.level, students: db.student}
}

func (repo *levelRepository) indexOf(name string) int {
	for i, lvl := range repo.db.rows {
		if lvl.Name == name {
			return i
		}
	}
	return -1
}

func (repo *levelRepository) insert(name string) level.Level {
	repo.db.pk++
	lvl := level.Level{ID: repo.db.pk, Name: name}
	repo.db.rows = append(repo.db.rows, lvl)
	return lvl
}

func (repo *levelRepository) CreateLevel(_ context.Context, name string) (level.Level, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.indexOf(name) >= 0 {
		return level.Level{}, level.ErrNameExists
	}
	return repo.insert(name), nil
}

func (repo *levelRepository) CreateLevelsIfAbsent(_ context.Context, names ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, name := range names {
		if repo.indexOf(name) < 0 {
			repo.insert(name)
		}
	}
	return nil
}

func (repo *levelRepository) QueryLevels(_ context.Context) ([]level.Level, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	levels := make([]level.Level, len(repo.db.rows))
	copy(levels, repo.db.rows)
	return levels, nil
}

func (repo *levelRepository) GetLevelByName(_ context.Context, name string) (level.Level, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if i := repo.indexOf(name); i >= 0 {
		return repo.db.rows[i], nil
	}
	return level.Level{}, level.ErrNotFound
}

func (repo *levelRepository) RenameLevel(_ context.Context, oldName, newName string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.indexOf(oldName)
	if i < 0 {
		return level.ErrNotFound
	}
	repo.db.rows[i].Name = newName

	repo.students.mutex.Lock()
	defer repo.students.mutex.Unlock()
	for _, s := range repo.students.table {
		if s.Level == oldName {
			s.Level = newName
		}
	}
	return nil
}

func (repo *levelRepository) DeleteLevel(_ context.Context, name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.indexOf(name)
	if i < 0 {
		return level.ErrNotFound
	}
	repo.db.rows = append(repo.db.rows[:i], repo.db.rows[i+1:]...)
	return nil
}
