// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/student"
	"github.com/trezcool/escondite/core/user"
	"github.com/trezcool/escondite/storage/database"
)

// PrepareDB opens a migrated sqlite database in a temporary directory.
// It is closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	goose.SetLogger(goose.NopLogger())

	conf := core.DatabaseConfig{Engine: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(db, conf); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd, role string) user.User {
	t.Helper()
	usr := user.User{Username: uname, Role: role}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, name string, age int, level string) student.Student {
	t.Helper()
	s, err := repo.CreateStudent(context.Background(), student.Student{Name: name, Age: age, Level: level})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}
