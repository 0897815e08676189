package main

import (
	"context"

	"github.com/trezcool/escondite/core/user"
)

func (cli *commandLine) user(ctx context.Context, args []string) error {
	sub, args, err := cli.subcommand(args, "user add|list|edit|delete|resetpassword [flags]")
	if err != nil {
		return err
	}
	svc, err := cli.services()
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		fs := cli.flagSet("user add")
		uname := fs.String("username", "", "username")
		role := fs.String("role", user.RoleUser, "role: admin or user")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *uname); err != nil {
			return err
		}
		pwd, confirm, err := cli.promptNewPassword()
		if err != nil {
			return err
		}
		usr, err := svc.Users.Create(ctx, user.NewUser{
			Username:        *uname,
			Password:        pwd,
			PasswordConfirm: confirm,
			Role:            *role,
		})
		if err != nil {
			return err
		}
		return cli.render(usr, usersTable([]user.User{usr}))

	case "list":
		fs := cli.flagSet("user list")
		search := fs.String("search", "", "case-insensitive match on username")
		role := fs.String("role", "", "only users with this role")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		users, err := svc.Users.QueryAll(ctx, user.QueryFilter{Search: *search, Role: *role})
		if err != nil {
			return err
		}
		return cli.render(users, usersTable(users))

	case "edit":
		fs := cli.flagSet("user edit")
		uname := fs.String("username", "", "current username")
		newName := fs.String("new-username", "", "new username")
		role := fs.String("role", "", "new role: admin or user")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *uname); err != nil {
			return err
		}
		orig, err := svc.Users.GetByUsername(ctx, *uname)
		if err != nil {
			return err
		}
		usr, err := svc.Users.Update(ctx, orig.ID, user.UpdateUser{Username: *newName, Role: *role})
		if err != nil {
			return err
		}
		return cli.render(usr, usersTable([]user.User{usr}))

	case "delete":
		fs := cli.flagSet("user delete")
		uname := fs.String("username", "", "username")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *uname); err != nil {
			return err
		}
		if err = svc.Users.Delete(ctx, *uname); err != nil {
			return err
		}
		cli.printf("user %s deleted\n", *uname)
		return nil

	case "resetpassword":
		fs := cli.flagSet("user resetpassword")
		uname := fs.String("username", "", "username")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *uname); err != nil {
			return err
		}
		pwd, confirm, err := cli.promptNewPassword()
		if err != nil {
			return err
		}
		err = svc.Users.SetPassword(ctx, user.SetUserPassword{Username: *uname, Password: pwd, PasswordConfirm: confirm})
		if err != nil {
			return err
		}
		cli.printf("password of %s changed\n", *uname)
		return nil

	default:
		return cli.unknownSubcommand("user", sub)
	}
}

func (cli *commandLine) promptNewPassword() (string, string, error) {
	pwd, err := cli.promptPassword("Password: ")
	if err != nil {
		return "", "", err
	}
	confirm, err := cli.promptPassword("Confirm Password: ")
	if err != nil {
		return "", "", err
	}
	return pwd, confirm, nil
}
