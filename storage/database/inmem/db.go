// Package inmemdb is a process-local store backing the services in tests and dry runs.
package inmemdb

import (
	"strings"
	"sync"

	"github.com/trezcool/escondite/core/bonus"
	"github.com/trezcool/escondite/core/level"
	"github.com/trezcool/escondite/core/student"
	"github.com/trezcool/escondite/core/user"
)

type (
	DB struct {
		user    *userTable
		student *studentTable
		level   *levelTable
		reward  *rewardTable
	}

	userTable struct {
		table map[int]*user.User
		pk    int
		mutex sync.RWMutex
	}

	studentTable struct {
		table map[int]*student.Student
		pk    int
		mutex sync.RWMutex
	}

	levelTable struct {
		rows  []level.Level
		pk    int
		mutex sync.RWMutex
	}

	// rewards keep insertion order
	rewardTable struct {
		rows  []bonus.Reward
		pk    int
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:    &userTable{table: make(map[int]*user.User)},
		student: &studentTable{table: make(map[int]*student.Student)},
		level:   &levelTable{},
		reward:  &rewardTable{},
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
