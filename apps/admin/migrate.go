package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core/user"
	"github.com/trezcool/escondite/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(_ context.Context, args []string) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(cli.errOut, "Usage:\n  migrate up|up-by-one|up-to VERSION|down|down-to VERSION|redo|reset|status|version")
		return errHelp
	}
	svc, err := cli.services()
	if err != nil {
		return err
	}
	return gooseRunFunc(svc.DB, cli.conf.Database, args[0], args[1:]...)
}

// setup migrates the database, seeds the default levels and creates the admin account.
func (cli *commandLine) setup(ctx context.Context, args []string) error {
	fs := cli.flagSet("setup")
	adminPwd := fs.String("admin-password", cli.conf.AdminPassword, "password of the default admin account, prompted if empty")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	svc, err := cli.services()
	if err != nil {
		return err
	}
	if err = gooseRunFunc(svc.DB, cli.conf.Database, "up"); err != nil {
		return err
	}
	if err = svc.Levels.Seed(ctx); err != nil {
		return err
	}

	if _, err = svc.Users.GetByUsername(ctx, user.DefaultAdminUsername); err == nil {
		cli.printf("database ready\n")
		return nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	pwd := *adminPwd
	if pwd == "" {
		if pwd, err = cli.promptPassword("Password for " + user.DefaultAdminUsername + ": "); err != nil {
			return err
		}
	}
	if _, err = svc.Users.EnsureAdmin(ctx, pwd); err != nil {
		return err
	}
	cli.printf("database ready, %q account created\n", user.DefaultAdminUsername)
	return nil
}
