package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/bonus"
	"github.com/trezcool/escondite/core/class"
	"github.com/trezcool/escondite/core/level"
	"github.com/trezcool/escondite/core/payment"
	"github.com/trezcool/escondite/core/student"
	"github.com/trezcool/escondite/core/user"
	emailsvc "github.com/trezcool/escondite/services/email"
	"github.com/trezcool/escondite/storage/database"
	sqlxrepos "github.com/trezcool/escondite/storage/database/sqlx"
)

// appServices is resolved on first use, so commands that never touch the
// database do not open it.
type appServices struct {
	dig.In

	DB       *sqlx.DB
	Users    *user.Service
	Students *student.Service
	Levels   *level.Service
	Classes  *class.Service
	Payments *payment.Service
	Ledger   *bonus.Ledger
	Mailer   core.EmailService
}

func newDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf.Database)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.Email.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, os.Stderr)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newContainer returns the dependency injection dig.Container of the CLI.
func newContainer(conf *core.Config, logger core.Logger) *dig.Container {
	c := dig.New()

	must(c.Provide(func() *core.Config { return conf }))
	must(c.Provide(func() core.Logger { return logger }))
	must(c.Provide(func() func() core.Date { return bonus.Today }))
	must(c.Provide(newDB))
	must(c.Provide(func(db *sqlx.DB) core.DBConnector { return db }))
	must(c.Provide(newEmailService))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository))
	must(c.Provide(sqlxrepos.NewStudentRepository))
	must(c.Provide(sqlxrepos.NewLevelRepository))
	must(c.Provide(sqlxrepos.NewClassRepository))
	must(c.Provide(sqlxrepos.NewPaymentRepository))
	must(c.Provide(sqlxrepos.NewRewardStore))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(level.NewService))
	must(c.Provide(func(svc *level.Service) student.LevelChecker { return svc }))
	must(c.Provide(student.NewService))
	must(c.Provide(func(svc *student.Service) payment.StudentChecker { return svc }))
	must(c.Provide(bonus.NewLedger))
	must(c.Provide(func(l *bonus.Ledger) payment.BonusChecker { return l }))
	must(c.Provide(payment.NewService))
	must(c.Provide(class.NewService))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
