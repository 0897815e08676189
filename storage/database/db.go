package database

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/trezcool/escondite/core"
	appfs "github.com/trezcool/escondite/fs"
)

var (
	ErrUnsupported   = errors.New("operation only supported on the sqlite engine")
	ErrBackupExists  = errors.New("backup file already exists")
	ErrInvalidBackup = errors.New("not a valid database backup")
)

// DriverName returns the database/sql driver registered for the configured engine.
func DriverName(conf core.DatabaseConfig) string {
	if conf.IsSQLite() {
		return "sqlite"
	}
	return "postgres"
}

// Dialect returns the goose dialect of the configured engine.
func Dialect(conf core.DatabaseConfig) string {
	if conf.IsSQLite() {
		return "sqlite3"
	}
	return "postgres"
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_txlock=immediate"
}

func postgresDSN(conf core.DatabaseConfig) string {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open opens and pings the configured database. The sqlite file and its directory are created if missing.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	var dsn string
	if conf.IsSQLite() {
		if err := os.MkdirAll(filepath.Dir(conf.Path), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
		dsn = sqliteDSN(conf.Path)
	} else {
		dsn = postgresDSN(conf)
	}

	db, err := sqlx.Open(DriverName(conf), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.IsSQLite() {
		// one writer at a time on a single file
		db.SetMaxOpenConns(1)
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func setupGoose(conf core.DatabaseConfig) error {
	goose.SetBaseFS(appfs.FS)
	return goose.SetDialect(Dialect(conf))
}

// Migrate applies all pending migrations.
func Migrate(db *sqlx.DB, conf core.DatabaseConfig) error {
	return RunMigrations(db, conf, "up")
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset, up-to VERSION, ...).
func RunMigrations(db *sqlx.DB, conf core.DatabaseConfig, command string, args ...string) error {
	if err := setupGoose(conf); err != nil {
		return errors.Wrap(err, "setting up migrations")
	}
	if err := goose.Run(command, db.DB, appfs.MigrationsDir(Dialect(conf)), args...); err != nil {
		return errors.Wrapf(err, "running migrations (%s)", command)
	}
	return nil
}

// BackupName returns the default file name of a backup taken at t.
func BackupName(t time.Time) string {
	return fmt.Sprintf("el_escondite_ingles-%s.db", t.Format("20060102-150405"))
}

// Backup writes a consistent copy of the sqlite database to dest and returns the written path.
// When dest is an existing directory, the copy is named with BackupName.
func Backup(ctx context.Context, db *sqlx.DB, conf core.DatabaseConfig, dest string, force bool) (string, error) {
	if !conf.IsSQLite() {
		return "", ErrUnsupported
	}
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		dest = filepath.Join(dest, BackupName(time.Now()))
	}
	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}
	if _, err = os.Stat(dest); err == nil {
		if !force {
			return "", errors.Wrap(ErrBackupExists, dest)
		}
		if err = os.Remove(dest); err != nil {
			return "", errors.Wrap(err, "removing previous backup")
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", errors.Wrap(err, "creating backup directory")
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return "", errors.Wrap(err, "acquiring connection")
	}
	defer conn.Close()

	q := "VACUUM INTO '" + strings.ReplaceAll(dest, "'", "''") + "'"
	if _, err = conn.ExecContext(ctx, q); err != nil {
		return "", errors.Wrap(err, "writing backup")
	}
	return dest, nil
}

// Restore replaces the sqlite database file with the backup at src.
// The database must not be open while restoring.
func Restore(ctx context.Context, conf core.DatabaseConfig, src string) error {
	if !conf.IsSQLite() {
		return ErrUnsupported
	}
	if err := checkBackup(ctx, src); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(conf.Path), 0o755); err != nil {
		return errors.Wrap(err, "creating database directory")
	}

	tmp := conf.Path + ".restore"
	if err := copyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "copying backup")
	}
	if err := os.Rename(tmp, conf.Path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "replacing database")
	}
	return nil
}

// checkBackup verifies that src is a sound sqlite database holding the rewards table.
func checkBackup(ctx context.Context, src string) error {
	if _, err := os.Stat(src); err != nil {
		return errors.Wrap(err, "opening backup")
	}
	db, err := sqlx.Open("sqlite", "file:"+src+"?mode=ro")
	if err != nil {
		return errors.Wrap(err, "opening backup")
	}
	defer db.Close()

	var result string
	if err = db.GetContext(ctx, &result, "PRAGMA integrity_check"); err != nil {
		return errors.Wrap(ErrInvalidBackup, err.Error())
	}
	if result != "ok" {
		return errors.Wrap(ErrInvalidBackup, result)
	}
	var n int
	if err = db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'rewards'"); err != nil {
		return errors.Wrap(ErrInvalidBackup, err.Error())
	}
	if n == 0 {
		return errors.Wrap(ErrInvalidBackup, "missing rewards table")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
