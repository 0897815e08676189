package student

import (
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escondite/core"
)

var (
	ErrNotFound     = errors.New("student not found")
	ErrNameExists   = errors.New("a student with this name already exists")
	ErrUnknownLevel = errors.New("unknown level")
)

type Student struct {
	ID     int      `db:"id" json:"id" yaml:"id"`
	Name   string   `db:"name" json:"name" yaml:"name"`
	Age    int      `db:"age" json:"age" yaml:"age"`
	Level  string   `db:"level" json:"level" yaml:"level"`
	UserID null.Int `db:"user_id" json:"user_id" yaml:"user_id"`

	// read-only, joined from users
	Username null.String `db:"username" json:"username" yaml:"username"`
}

type NewStudent struct {
	Name   string `json:"name" validate:"notblank,max=100"`
	Age    int    `json:"age" validate:"gte=12,lte=120"`
	Level  string `json:"level" validate:"notblank"`
	UserID int    `json:"user_id" validate:"omitempty,gt=0"`
}

type UpdateStudent NewStudent

type QueryFilter struct {
	Search string // case-insensitive substring of name or level
	Level  string // exact level
}

func newStudent(ns NewStudent) Student {
	s := Student{
		Name:  core.CleanString(ns.Name),
		Age:   ns.Age,
		Level: core.CleanString(ns.Level),
	}
	if ns.UserID > 0 {
		s.UserID = null.IntFrom(ns.UserID)
	}
	return s
}
