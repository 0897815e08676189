package main

import (
	"context"

	"github.com/trezcool/escondite/core"
)

// login authenticates the operator with the configured credentials, prompting
// for the missing ones.
func (cli *commandLine) login(ctx context.Context, needAdmin bool) error {
	svc, err := cli.services()
	if err != nil {
		return err
	}

	uname := cli.conf.Auth.Username
	if uname == "" {
		if uname, err = cli.prompt("Username: "); err != nil {
			return err
		}
	}
	pwd := cli.conf.Auth.Password
	if pwd == "" {
		if pwd, err = cli.promptPassword("Password: "); err != nil {
			return err
		}
	}

	usr, err := svc.Users.Authenticate(ctx, uname, pwd)
	if err != nil {
		cli.logger.Warn("login failed", "username", uname)
		return err
	}
	if needAdmin && !usr.IsAdmin() {
		cli.logger.Warn("permission denied", usr)
		return core.ErrPermissionDenied
	}
	cli.usr = usr
	cli.logger.Debug("logged in", usr)
	return nil
}
