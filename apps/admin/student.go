package main

import (
	"context"
	"fmt"

	"github.com/trezcool/escondite/core/student"
	exportsvc "github.com/trezcool/escondite/services/export"
)

func (cli *commandLine) student(ctx context.Context, args []string) error {
	sub, args, err := cli.subcommand(args, "student add|list|edit|delete|export [flags]")
	if err != nil {
		return err
	}
	svc, err := cli.services()
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		fs := cli.flagSet("student add")
		name := fs.String("name", "", "full name (unique)")
		age := fs.Int("age", 0, "age, 12 to 120")
		lvl := fs.String("level", "", "proficiency level")
		uname := fs.String("user", "", "username of the linked user account (optional)")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name, *lvl); err != nil {
			return err
		}
		ns := student.NewStudent{Name: *name, Age: *age, Level: *lvl}
		if ns.UserID, err = cli.userID(ctx, *uname); err != nil {
			return err
		}
		s, err := svc.Students.Enroll(ctx, ns)
		if err != nil {
			return err
		}
		return cli.render(s, exportsvc.Students([]student.Student{s}))

	case "list", "export":
		fs := cli.flagSet("student " + sub)
		search := fs.String("search", "", "case-insensitive match on name or level")
		lvl := fs.String("level", "", "only students of this level")
		to := fs.String("to", "", "export file (.csv or .xlsx)")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if sub == "export" {
			if err = required(fs, *to); err != nil {
				return err
			}
		}
		students, err := svc.Students.QueryAll(ctx, student.QueryFilter{Search: *search, Level: *lvl})
		if err != nil {
			return err
		}
		if sub == "export" {
			return cli.export(*to, exportsvc.Students(students), len(students))
		}
		return cli.render(students, exportsvc.Students(students))

	case "edit":
		fs := cli.flagSet("student edit")
		name := fs.String("name", "", "current name of the student")
		newName := fs.String("new-name", "", "new name")
		age := fs.Int("age", 0, "new age")
		lvl := fs.String("level", "", "new level")
		uname := fs.String("user", "", "username of the linked user account")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name); err != nil {
			return err
		}
		orig, err := svc.Students.GetByName(ctx, *name)
		if err != nil {
			return err
		}
		us := student.UpdateStudent{Name: orig.Name, Age: orig.Age, Level: orig.Level, UserID: orig.UserID.Int}
		if *newName != "" {
			us.Name = *newName
		}
		if *age != 0 {
			us.Age = *age
		}
		if *lvl != "" {
			us.Level = *lvl
		}
		if *uname != "" {
			if us.UserID, err = cli.userID(ctx, *uname); err != nil {
				return err
			}
		}
		s, err := svc.Students.Update(ctx, orig.ID, us)
		if err != nil {
			return err
		}
		return cli.render(s, exportsvc.Students([]student.Student{s}))

	case "delete":
		fs := cli.flagSet("student delete")
		name := fs.String("name", "", "name of the student")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name); err != nil {
			return err
		}
		s, err := svc.Students.GetByName(ctx, *name)
		if err != nil {
			return err
		}
		if err = svc.Students.Delete(ctx, s.ID); err != nil {
			return err
		}
		cli.printf("student %q deleted\n", s.Name)
		return nil

	default:
		return cli.unknownSubcommand("student", sub)
	}
}

// userID resolves an optional username to its id; 0 when uname is empty.
func (cli *commandLine) userID(ctx context.Context, uname string) (int, error) {
	if uname == "" {
		return 0, nil
	}
	usr, err := cli.svc.Users.GetByUsername(ctx, uname)
	if err != nil {
		return 0, err
	}
	return usr.ID, nil
}

func (cli *commandLine) export(path string, t exportsvc.Table, count int) error {
	if err := exportsvc.WriteFile(path, t); err != nil {
		return err
	}
	cli.logger.Info("records exported", "path", path, "count", count, cli.usr)
	cli.printf("%d rows exported to %s\n", count, path)
	return nil
}

func (cli *commandLine) unknownSubcommand(cmd, sub string) error {
	_, _ = fmt.Fprintf(cli.errOut, "unknown %s subcommand %q\n", cmd, sub)
	return errHelp
}
