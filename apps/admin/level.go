package main

import (
	"context"

	"github.com/trezcool/escondite/core/level"
)

func (cli *commandLine) level(ctx context.Context, args []string) error {
	sub, args, err := cli.subcommand(args, "level list|add|rename|delete [flags]")
	if err != nil {
		return err
	}
	svc, err := cli.services()
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		levels, err := svc.Levels.QueryAll(ctx)
		if err != nil {
			return err
		}
		return cli.render(levels, levelsTable(levels))

	case "add":
		fs := cli.flagSet("level add")
		name := fs.String("name", "", "level name (letters, digits and underscores)")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name); err != nil {
			return err
		}
		lvl, err := svc.Levels.Create(ctx, *name)
		if err != nil {
			return err
		}
		return cli.render(lvl, levelsTable([]level.Level{lvl}))

	case "rename":
		fs := cli.flagSet("level rename")
		from := fs.String("from", "", "current name")
		to := fs.String("to", "", "new name; students at this level are moved along")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *from, *to); err != nil {
			return err
		}
		if err = svc.Levels.Rename(ctx, *from, *to); err != nil {
			return err
		}
		cli.printf("level %q renamed to %q\n", *from, *to)
		return nil

	case "delete":
		fs := cli.flagSet("level delete")
		name := fs.String("name", "", "level name")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name); err != nil {
			return err
		}
		if err = svc.Levels.Delete(ctx, *name); err != nil {
			return err
		}
		cli.printf("level %q deleted\n", *name)
		return nil

	default:
		return cli.unknownSubcommand("level", sub)
	}
}
