package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/bonus"
	"github.com/trezcool/escondite/core/class"
	"github.com/trezcool/escondite/core/level"
	"github.com/trezcool/escondite/core/payment"
	"github.com/trezcool/escondite/core/student"
	"github.com/trezcool/escondite/core/user"
	emailsvc "github.com/trezcool/escondite/services/email"
	exportsvc "github.com/trezcool/escondite/services/export"
	logsvc "github.com/trezcool/escondite/services/logger"
	"github.com/trezcool/escondite/storage/database"
)

const adminPwd = "Tr1cky#Bonus"

func init() {
	goose.SetLogger(goose.NopLogger())
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

type testCLI struct {
	*commandLine
	stdout *bytes.Buffer
	mailer *emailsvc.ConsoleServiceMock
}

func testConfig(t *testing.T) *core.Config {
	conf := &core.Config{
		AppName: "El Escondite Inglés",
		Debug:   true,
		Database: core.DatabaseConfig{
			Engine: "sqlite",
			Path:   filepath.Join(t.TempDir(), "escondite.db"),
		},
		Email: core.EmailConfig{
			DefaultFrom:   mail.Address{Name: "El Escondite Inglés", Address: "noreply@escondite.test"},
			OfficeAddress: mail.Address{Address: "office@escondite.test"},
		},
	}
	conf.Bonus.ExpiryWindowDays = 7
	return conf
}

func newTestCLI(t *testing.T, conf *core.Config) *testCLI {
	logger := logsvc.NewNop()
	mailer := emailsvc.NewConsoleServiceMock(conf)
	c := newContainer(conf, logger)
	require.NoError(t, c.Decorate(func(core.EmailService) core.EmailService { return mailer }))

	stdout := new(bytes.Buffer)
	cli := newCommandLine(conf, logger, c, strings.NewReader(""), stdout, io.Discard)
	t.Cleanup(cli.close)
	return &testCLI{commandLine: cli, stdout: stdout, mailer: mailer}
}

// setup returns a CLI on a fresh, migrated database, logged in as the admin.
func setup(t *testing.T) *testCLI {
	conf := testConfig(t)
	cli := newTestCLI(t, conf)
	cli.exec(t, "setup", "-admin-password", adminPwd)
	conf.Auth.Username = user.DefaultAdminUsername
	conf.Auth.Password = adminPwd
	return cli
}

// run executes the command line and returns what it printed.
func (cli *testCLI) run(args ...string) (string, error) {
	cli.stdout.Reset()
	err := cli.commandLine.run(append([]string{"admin"}, args...))
	return cli.stdout.String(), err
}

func (cli *testCLI) exec(t *testing.T, args ...string) string {
	t.Helper()
	out, err := cli.run(args...)
	require.NoError(t, err, "admin %s", strings.Join(args, " "))
	return out
}

func (cli *testCLI) decode(t *testing.T, v interface{}, args ...string) {
	t.Helper()
	out := cli.exec(t, append([]string{"-format", "json"}, args...)...)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func mockPasswords(t *testing.T, pwds ...string) {
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	i := 0
	readPasswordFunc = func(int) ([]byte, error) {
		if i >= len(pwds) {
			return nil, io.EOF
		}
		pwd := pwds[i]
		i++
		return []byte(pwd), nil
	}
}

func mockToday(t *testing.T, day string) {
	d := core.MustParseDate(day)
	bonus.NowFunc = func() time.Time { return d.Time().Add(12 * time.Hour) }
	t.Cleanup(func() { bonus.NowFunc = time.Now })
}

func runTests(t *testing.T, cli *testCLI, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cli.run(tt.args...)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)
	runTests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown format", args: []string{"-format", "xml", "level", "list"}, wantErr: errHelp},
		{name: "help flag", args: []string{"-h"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"student"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"student", "lol"}, wantErr: errHelp},
		{name: "missing flag", args: []string{"student", "add", "-name", "Ana"}, wantErr: errHelp},
		{name: "list levels", args: []string{"level", "list"}},
	})
}

func Test_commandLine_setup(t *testing.T) {
	cli := setup(t)

	out := cli.exec(t, "setup")
	assert.Equal(t, "database ready\n", out)

	var levels []level.Level
	cli.decode(t, &levels, "level", "list")
	assert.Len(t, levels, len(level.DefaultLevels))

	var users []user.User
	cli.decode(t, &users, "user", "list")
	require.Len(t, users, 1)
	assert.Equal(t, user.DefaultAdminUsername, users[0].Username)
	assert.Equal(t, user.RoleAdmin, users[0].Role)
}

func Test_commandLine_setup_prompt(t *testing.T) {
	cli := newTestCLI(t, testConfig(t))

	mockPasswords(t, "weak")
	_, err := cli.run("setup")
	assert.True(t, core.IsValidationError(err), "cli.run() error = %v", err)

	mockPasswords(t, adminPwd)
	out := cli.exec(t, "setup")
	assert.Equal(t, "database ready, \"admin\" account created\n", out)
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(_ *sqlx.DB, _ core.DatabaseConfig, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = database.RunMigrations })

	runTests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	})
}

func Test_commandLine_login(t *testing.T) {
	cli := setup(t)

	mockPasswords(t, adminPwd, adminPwd)
	cli.exec(t, "user", "add", "-username", "recepcion")

	cli.conf.Auth.Password = "wrong"
	_, err := cli.run("level", "list")
	assert.True(t, errors.Is(err, user.ErrInvalidCredentials), "cli.run() error = %v", err)

	cli.conf.Auth.Username = "recepcion"
	cli.conf.Auth.Password = adminPwd
	cli.exec(t, "level", "list")

	_, err = cli.run("user", "list")
	assert.True(t, errors.Is(err, core.ErrPermissionDenied), "cli.run() error = %v", err)
}

func Test_commandLine_login_prompt(t *testing.T) {
	cli := setup(t)
	cli.conf.Auth.Username = ""
	cli.conf.Auth.Password = ""
	cli.in.Reset(strings.NewReader("admin\n"))

	mockPasswords(t, adminPwd)
	cli.exec(t, "level", "list")
	assert.Equal(t, user.DefaultAdminUsername, cli.usr.Username)
}

func Test_commandLine_student(t *testing.T) {
	cli := setup(t)

	var ana student.Student
	cli.decode(t, &ana, "student", "add", "-name", "Ana", "-age", "30", "-level", "A1", "-user", "admin")
	assert.Equal(t, "Ana", ana.Name)
	assert.True(t, ana.UserID.Valid)

	cli.exec(t, "student", "add", "-name", "Ben", "-age", "14", "-level", "B2")

	runTests(t, cli, []cliTest{
		{name: "duplicate name", args: []string{"student", "add", "-name", "Ana", "-age", "20", "-level", "A1"}, wantErr: student.ErrNameExists},
		{name: "too young", args: []string{"student", "add", "-name", "Cleo", "-age", "11", "-level", "A1"}, wantErr: core.ErrInvalidInput},
		{name: "unknown level", args: []string{"student", "add", "-name", "Cleo", "-age", "20", "-level", "Z9"}, wantErr: student.ErrUnknownLevel},
		{name: "unknown user", args: []string{"student", "add", "-name", "Cleo", "-age", "20", "-level", "A1", "-user", "lol"}, wantErr: user.ErrNotFound},
		{name: "edit unknown", args: []string{"student", "edit", "-name", "lol", "-age", "20"}, wantErr: student.ErrNotFound},
		{name: "delete unknown", args: []string{"student", "delete", "-name", "lol"}, wantErr: student.ErrNotFound},
	})

	var students []student.Student
	cli.decode(t, &students, "student", "list", "-search", "b2")
	require.Len(t, students, 1)
	assert.Equal(t, "Ben", students[0].Name)

	var edited student.Student
	cli.decode(t, &edited, "student", "edit", "-name", "Ana", "-new-name", "Ana María", "-age", "31")
	assert.Equal(t, "Ana María", edited.Name)
	assert.Equal(t, 31, edited.Age)
	assert.Equal(t, "A1", edited.Level)
	assert.Equal(t, ana.UserID, edited.UserID)

	path := filepath.Join(t.TempDir(), "alumnos.csv")
	out := cli.exec(t, "student", "export", "-to", path)
	assert.Equal(t, "2 rows exported to "+path+"\n", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Nombre,Edad,Nivel\n"), string(data))

	out = cli.exec(t, "student", "delete", "-name", "Ben")
	assert.Equal(t, "student \"Ben\" deleted\n", out)
	cli.decode(t, &students, "student", "list")
	assert.Len(t, students, 1)
}

func Test_commandLine_level(t *testing.T) {
	cli := setup(t)
	cli.exec(t, "student", "add", "-name", "Ana", "-age", "30", "-level", "B1")

	runTests(t, cli, []cliTest{
		{name: "add", args: []string{"level", "add", "-name", "Kids_1"}},
		{name: "add existing", args: []string{"level", "add", "-name", "A1"}, wantErr: level.ErrNameExists},
		{name: "add invalid", args: []string{"level", "add", "-name", "Kids 2"}, wantErr: core.ErrInvalidInput},
		{name: "rename unknown", args: []string{"level", "rename", "-from", "lol", "-to", "lmao"}, wantErr: level.ErrNotFound},
		{name: "rename", args: []string{"level", "rename", "-from", "B1", "-to", "B1_Plus"}},
		{name: "delete", args: []string{"level", "delete", "-name", "Kids_1"}},
	})

	var ana student.Student
	cli.decode(t, &ana, "student", "edit", "-name", "Ana")
	assert.Equal(t, "B1_Plus", ana.Level)
}

func Test_commandLine_class(t *testing.T) {
	cli := setup(t)

	var c class.Class
	cli.decode(t, &c, "class", "add", "-name", "Conversation", "-date", "2025-03-03", "-professor", "Laura")
	assert.Equal(t, "2025-03-03", c.Date.String())

	runTests(t, cli, []cliTest{
		{name: "duplicate", args: []string{"class", "add", "-name", "Conversation", "-date", "2025-03-04", "-professor", "Laura"}, wantErr: class.ErrNameExists},
		{name: "bad date", args: []string{"class", "add", "-name", "Grammar", "-date", "03/03/2025", "-professor", "Laura"}, wantErr: core.ErrInvalidInput},
		{name: "edit no id", args: []string{"class", "edit"}, wantErr: errHelp},
		{name: "edit unknown", args: []string{"class", "edit", "-id", "999", "-professor", "Sam"}, wantErr: class.ErrNotFound},
	})

	var edited class.Class
	cli.decode(t, &edited, "class", "edit", "-id", strconv.Itoa(c.ID), "-professor", "Sam")
	assert.Equal(t, "Sam", edited.Professor)
	assert.Equal(t, c.Name, edited.Name)

	out := cli.exec(t, "class", "delete", "-id", strconv.Itoa(c.ID))
	assert.Equal(t, fmt.Sprintf("class %d deleted\n", c.ID), out)

	var classes []class.Class
	cli.decode(t, &classes, "class", "list")
	assert.Empty(t, classes)
}

func Test_commandLine_payment(t *testing.T) {
	cli := setup(t)
	mockToday(t, "2025-02-15")
	cli.exec(t, "student", "add", "-name", "Ana", "-age", "30", "-level", "A1")
	cli.exec(t, "student", "add", "-name", "Ben", "-age", "25", "-level", "A2")

	var p payment.Payment
	cli.decode(t, &p, "payment", "add", "-student", "Ana", "-amount", "50", "-method", "cash")
	assert.Equal(t, "Ana", p.StudentName)
	assert.Equal(t, "2025-02-15", p.Date.String())
	assert.Equal(t, "cash", p.Method.String)

	runTests(t, cli, []cliTest{
		{name: "unknown student", args: []string{"payment", "add", "-student", "lol", "-amount", "50"}, wantErr: student.ErrNotFound},
		{name: "zero amount", args: []string{"payment", "add", "-student", "Ana"}, wantErr: core.ErrInvalidInput},
		{name: "edit no id", args: []string{"payment", "edit", "-amount", "10"}, wantErr: errHelp},
		{name: "edit unknown", args: []string{"payment", "edit", "-id", "999", "-amount", "10"}, wantErr: payment.ErrNotFound},
		{name: "delete unknown", args: []string{"payment", "delete", "-id", "999"}, wantErr: payment.ErrNotFound},
	})

	var edited payment.Payment
	cli.decode(t, &edited, "payment", "edit", "-id", strconv.Itoa(p.ID), "-amount", "60")
	assert.Equal(t, 60.0, edited.Amount)
	assert.Equal(t, "cash", edited.Method.String)

	// Ana referred Ben and is not charged during her bonus
	cli.exec(t, "bonus", "grant", "-recommender", "Ana", "-new", "Ben", "-months", "1", "-date", "2025-02-01")
	_, err := cli.run("payment", "add", "-student", "Ana", "-amount", "50")
	assert.True(t, errors.Is(err, payment.ErrUnderActiveBonus), "cli.run() error = %v", err)
	cli.exec(t, "payment", "add", "-student", "Ben", "-amount", "45", "-date", "2025-02-14")

	var payments []payment.Payment
	cli.decode(t, &payments, "payment", "list", "-student", "Ben")
	require.Len(t, payments, 1)
	assert.Equal(t, 45.0, payments[0].Amount)

	path := filepath.Join(t.TempDir(), "pagos.xlsx")
	cli.exec(t, "payment", "export", "-to", path)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := exportsvc.ReadXLSX(f)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alumno", rows[0][1])

	out := cli.exec(t, "payment", "delete", "-id", strconv.Itoa(p.ID))
	assert.Equal(t, fmt.Sprintf("payment %d deleted\n", p.ID), out)
}

func Test_commandLine_bonus(t *testing.T) {
	cli := setup(t)
	for _, name := range []string{"Ana", "Ben", "Cleo"} {
		cli.exec(t, "student", "add", "-name", name, "-age", "30", "-level", "A1")
	}

	var granted bonus.RewardView
	cli.decode(t, &granted, "bonus", "grant", "-recommender", "Ana", "-new", "Ben", "-months", "1", "-date", "2025-01-01")
	assert.Equal(t, "Eire", granted.Name)
	assert.Equal(t, "Ana", granted.RecommenderName)
	assert.Equal(t, "Ben", granted.NewStudentName)
	assert.Equal(t, "2025-01-01", granted.AwardDate.String())

	runTests(t, cli, []cliTest{
		{name: "already granted", args: []string{"bonus", "grant", "-recommender", "Cleo", "-new", "Ben", "-months", "3"}, wantErr: bonus.ErrAlreadyGranted},
		{name: "self referral", args: []string{"bonus", "grant", "-recommender", "Cleo", "-new", "Cleo", "-months", "3"}, wantErr: bonus.ErrSelfReferral},
		{name: "months not offered", args: []string{"bonus", "grant", "-recommender", "Ana", "-new", "Cleo", "-months", "2"}, wantErr: core.ErrInvalidInput},
		{name: "bad date", args: []string{"bonus", "grant", "-recommender", "Ana", "-new", "Cleo", "-months", "3", "-date", "lol"}, wantErr: core.ErrInvalidDate},
		{name: "unknown student", args: []string{"bonus", "grant", "-recommender", "lol", "-new", "Cleo", "-months", "3"}, wantErr: student.ErrNotFound},
		{name: "negative window", args: []string{"bonus", "expiring", "-days", "-1"}, wantErr: core.ErrInvalidInput},
	})

	var rewards []bonus.RewardView
	cli.decode(t, &rewards, "bonus", "list", "-reward", "eire")
	require.Len(t, rewards, 1)
	assert.Equal(t, granted.ID, rewards[0].ID)

	var status activeStatus
	cli.decode(t, &status, "bonus", "active", "-student", "Ana", "-date", "2025-01-31")
	assert.True(t, status.Active)
	cli.decode(t, &status, "bonus", "active", "-student", "Ana", "-date", "2025-02-01")
	assert.False(t, status.Active)

	var expiring []bonus.ExpiringBonus
	cli.decode(t, &expiring, "bonus", "expiring", "-date", "2025-01-28")
	require.Len(t, expiring, 1)
	assert.Equal(t, bonus.ExpiringBonus{
		StudentName:     "Ben",
		RecommenderName: "Ana",
		ExpiryDate:      core.MustParseDate("2025-02-01"),
		DaysLeft:        4,
	}, expiring[0])
	cli.decode(t, &expiring, "bonus", "expiring", "-days", "3", "-date", "2025-01-28")
	assert.Empty(t, expiring)

	mockToday(t, "2025-01-20")
	out := cli.exec(t, "bonus", "notify")
	assert.Equal(t, "no bonus ends within 7 days, nothing sent\n", out)
	assert.Empty(t, cli.mailer.SentMessages)

	out = cli.exec(t, "bonus", "notify", "-days", "15")
	assert.Equal(t, "1 expiring bonuses sent to office@escondite.test\n", out)
	require.Len(t, cli.mailer.SentMessages, 1)
	assert.Equal(t, "office@escondite.test", cli.mailer.SentMessages[0].To[0].Address)

	path := filepath.Join(t.TempDir(), "recompensas.csv")
	cli.exec(t, "bonus", "export", "-to", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ana,Ben,Eire,1,2025-01-01")

	out = cli.exec(t, "bonus", "revoke", "-recommender", "Ana", "-new", "Ben")
	assert.Equal(t, "reward of Ana for referring Ben revoked\n", out)
	_, err = cli.run("bonus", "revoke", "-recommender", "Ana", "-new", "Ben")
	assert.True(t, errors.Is(err, bonus.ErrNotFound), "cli.run() error = %v", err)
}

func Test_commandLine_bonus_notifyWithoutOffice(t *testing.T) {
	cli := setup(t)
	cli.conf.Email.OfficeAddress = mail.Address{}

	_, err := cli.run("bonus", "notify")
	assert.True(t, core.IsValidationError(err), "cli.run() error = %v", err)
}

func Test_commandLine_user(t *testing.T) {
	cli := setup(t)

	mockPasswords(t, adminPwd, adminPwd)
	var usr user.User
	cli.decode(t, &usr, "user", "add", "-username", "Recepcion")
	assert.Equal(t, "recepcion", usr.Username)
	assert.Equal(t, user.RoleUser, usr.Role)

	mockPasswords(t, adminPwd, "different")
	_, err := cli.run("user", "add", "-username", "other")
	assert.True(t, core.IsValidationError(err), "cli.run() error = %v", err)

	runTests(t, cli, []cliTest{
		{name: "no username", args: []string{"user", "add"}, wantErr: errHelp},
		{name: "edit unknown", args: []string{"user", "edit", "-username", "lol", "-role", "admin"}, wantErr: user.ErrNotFound},
		{name: "demote last admin", args: []string{"user", "edit", "-username", "admin", "-role", "user"}, wantErr: user.ErrLastAdmin},
		{name: "delete last admin", args: []string{"user", "delete", "-username", "admin"}, wantErr: user.ErrLastAdmin},
	})

	var edited user.User
	cli.decode(t, &edited, "user", "edit", "-username", "recepcion", "-new-username", "secretaria", "-role", "admin")
	assert.Equal(t, "secretaria", edited.Username)
	assert.Equal(t, user.RoleAdmin, edited.Role)

	var users []user.User
	cli.decode(t, &users, "user", "list", "-role", "admin")
	assert.Len(t, users, 2)

	newPwd := "Zumo#47Kiwi"
	mockPasswords(t, newPwd, newPwd)
	out := cli.exec(t, "user", "resetpassword", "-username", "secretaria")
	assert.Equal(t, "password of secretaria changed\n", out)

	cli.conf.Auth.Username = "secretaria"
	cli.conf.Auth.Password = newPwd
	out = cli.exec(t, "user", "delete", "-username", "admin")
	assert.Equal(t, "user admin deleted\n", out)
}

func Test_commandLine_backupRestore(t *testing.T) {
	cli := setup(t)
	cli.exec(t, "student", "add", "-name", "Ana", "-age", "30", "-level", "A1")

	path := filepath.Join(t.TempDir(), "copia.db")
	out := cli.exec(t, "backup", "-to", path)
	assert.Equal(t, "backup written to "+path+"\n", out)

	_, err := cli.run("backup", "-to", path)
	assert.True(t, errors.Is(err, database.ErrBackupExists), "cli.run() error = %v", err)
	cli.exec(t, "backup", "-to", path, "-force")

	cli.exec(t, "student", "add", "-name", "Ben", "-age", "30", "-level", "A1")

	_, err = cli.run("restore", "-from", filepath.Join(t.TempDir(), "lol.db"))
	assert.Error(t, err)

	cli = newTestCLI(t, cli.conf)
	out = cli.exec(t, "restore", "-from", path)
	assert.Equal(t, "database restored from "+path+"\n", out)

	cli = newTestCLI(t, cli.conf)
	var students []student.Student
	cli.decode(t, &students, "student", "list")
	require.Len(t, students, 1)
	assert.Equal(t, "Ana", students[0].Name)
}
