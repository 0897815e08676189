package main

import (
	"context"

	"github.com/trezcool/escondite/storage/database"
)

func (cli *commandLine) backup(ctx context.Context, args []string) error {
	fs := cli.flagSet("backup")
	to := fs.String("to", ".", "backup file, or directory to write a timestamped copy into")
	force := fs.Bool("force", false, "overwrite an existing backup file")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, *to); err != nil {
		return err
	}

	svc, err := cli.services()
	if err != nil {
		return err
	}
	path, err := database.Backup(ctx, svc.DB, cli.conf.Database, *to, *force)
	if err != nil {
		return err
	}
	cli.logger.Info("database backed up", "path", path, cli.usr)
	cli.printf("backup written to %s\n", path)
	return nil
}

// restore replaces the database file; the connection opened by the login gate
// is closed first.
func (cli *commandLine) restore(ctx context.Context, args []string) error {
	fs := cli.flagSet("restore")
	from := fs.String("from", "", "backup file to restore")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, *from); err != nil {
		return err
	}

	cli.close()
	if err := database.Restore(ctx, cli.conf.Database, *from); err != nil {
		return err
	}
	cli.logger.Info("database restored", "path", *from, cli.usr)
	cli.printf("database restored from %s\n", *from)
	return nil
}
