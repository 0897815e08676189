package main

import (
	"context"

	"github.com/trezcool/escondite/core/class"
)

func (cli *commandLine) class(ctx context.Context, args []string) error {
	sub, args, err := cli.subcommand(args, "class add|list|edit|delete [flags]")
	if err != nil {
		return err
	}
	svc, err := cli.services()
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		fs := cli.flagSet("class add")
		name := fs.String("name", "", "class name (unique)")
		date := fs.String("date", "", "class day, YYYY-MM-DD")
		prof := fs.String("professor", "", "professor")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name, *date, *prof); err != nil {
			return err
		}
		c, err := svc.Classes.Create(ctx, class.NewClass{Name: *name, Date: *date, Professor: *prof})
		if err != nil {
			return err
		}
		return cli.render(c, classesTable([]class.Class{c}))

	case "list":
		classes, err := svc.Classes.QueryAll(ctx)
		if err != nil {
			return err
		}
		return cli.render(classes, classesTable(classes))

	case "edit":
		fs := cli.flagSet("class edit")
		id := fs.Int("id", 0, "class id")
		name := fs.String("name", "", "new name")
		date := fs.String("date", "", "new day, YYYY-MM-DD")
		prof := fs.String("professor", "", "new professor")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if *id <= 0 {
			fs.Usage()
			return errHelp
		}
		orig, err := svc.Classes.GetByID(ctx, *id)
		if err != nil {
			return err
		}
		uc := class.UpdateClass{Name: orig.Name, Date: orig.Date.String(), Professor: orig.Professor}
		if *name != "" {
			uc.Name = *name
		}
		if *date != "" {
			uc.Date = *date
		}
		if *prof != "" {
			uc.Professor = *prof
		}
		c, err := svc.Classes.Update(ctx, orig.ID, uc)
		if err != nil {
			return err
		}
		return cli.render(c, classesTable([]class.Class{c}))

	case "delete":
		fs := cli.flagSet("class delete")
		id := fs.Int("id", 0, "class id")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if *id <= 0 {
			fs.Usage()
			return errHelp
		}
		if err = svc.Classes.Delete(ctx, *id); err != nil {
			return err
		}
		cli.printf("class %d deleted\n", *id)
		return nil

	default:
		return cli.unknownSubcommand("class", sub)
	}
}
