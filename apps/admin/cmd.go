package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"golang.org/x/term"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// access levels
const (
	public = iota
	loggedIn
	adminOnly
)

type command struct {
	name   string
	usage  string
	access int
	run    func(ctx context.Context, args []string) error
}

type commandLine struct {
	conf      *core.Config
	logger    core.Logger
	container *dig.Container
	in        *bufio.Reader
	out       io.Writer
	errOut    io.Writer

	format string
	svc    *appServices
	usr    user.User
}

func newCommandLine(conf *core.Config, logger core.Logger, c *dig.Container, in io.Reader, out, errOut io.Writer) *commandLine {
	return &commandLine{
		conf:      conf,
		logger:    logger,
		container: c,
		in:        bufio.NewReader(in),
		out:       out,
		errOut:    errOut,
	}
}

func (cli *commandLine) commands() []command {
	return []command{
		{name: "setup", usage: "create the database, seed the levels and the admin account", access: public, run: cli.setup},
		{name: "migrate", usage: "run a database migration command (up, down, status, ...)", access: public, run: cli.migrate},
		{name: "student", usage: "add|list|edit|delete|export students", access: loggedIn, run: cli.student},
		{name: "level", usage: "list|add|rename|delete levels", access: loggedIn, run: cli.level},
		{name: "class", usage: "add|list|edit|delete classes", access: loggedIn, run: cli.class},
		{name: "payment", usage: "add|list|edit|delete|export payments", access: loggedIn, run: cli.payment},
		{name: "bonus", usage: "grant|list|revoke|active|expiring|notify|export referral bonuses", access: loggedIn, run: cli.bonus},
		{name: "user", usage: "add|list|edit|delete|resetpassword users (admin only)", access: adminOnly, run: cli.user},
		{name: "backup", usage: "copy the database to a backup file", access: loggedIn, run: cli.backup},
		{name: "restore", usage: "replace the database with a backup file", access: loggedIn, run: cli.restore},
	}
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.errOut, "Usage:")
	_, _ = fmt.Fprintln(cli.errOut, "  admin [-format table|json|yaml] COMMAND [SUBCOMMAND] [flags]")
	_, _ = fmt.Fprintln(cli.errOut)
	_, _ = fmt.Fprintln(cli.errOut, "Commands:")
	for _, cmd := range cli.commands() {
		_, _ = fmt.Fprintf(cli.errOut, "  %-9s %s\n", cmd.name, cmd.usage)
	}
}

func (cli *commandLine) run(args []string) error {
	global := cli.flagSet("admin")
	global.StringVar(&cli.format, "format", "table", "output format: table, json or yaml")
	global.Usage = cli.printUsage
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	if err := cli.parse(global, args[1:]); err != nil {
		return err
	}
	switch cli.format {
	case "table", "json", "yaml":
	default:
		cli.printUsage()
		return errHelp
	}

	rest := global.Args()
	if len(rest) == 0 {
		cli.printUsage()
		return errHelp
	}
	for _, cmd := range cli.commands() {
		if cmd.name != rest[0] {
			continue
		}
		ctx := context.Background()
		if cmd.access != public {
			if err := cli.login(ctx, cmd.access == adminOnly); err != nil {
				return err
			}
		}
		return cmd.run(ctx, rest[1:])
	}
	cli.printUsage()
	return errHelp
}

// services opens the database and builds the services on first call.
func (cli *commandLine) services() (*appServices, error) {
	if cli.svc != nil {
		return cli.svc, nil
	}
	err := cli.container.Invoke(func(svc appServices) {
		cli.svc = &svc
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return cli.svc, nil
}

func (cli *commandLine) db() *sqlx.DB {
	if cli.svc == nil {
		return nil
	}
	return cli.svc.DB
}

// close releases the database, if it was opened.
func (cli *commandLine) close() {
	if db := cli.db(); db != nil {
		_ = db.Close()
	}
	cli.svc = nil
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.errOut)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

// subcommand splits args into the subcommand name and its flags.
func (cli *commandLine) subcommand(args []string, usage string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		_, _ = fmt.Fprintln(cli.errOut, "Usage:\n  "+usage)
		return "", nil, errHelp
	}
	return args[0], args[1:], nil
}

// required prints the flag set usage when one of the values is empty.
func required(fs *flag.FlagSet, values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) prompt(label string) (string, error) {
	_, _ = fmt.Fprint(cli.errOut, label)
	line, err := cli.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

func (cli *commandLine) promptPassword(label string) (string, error) {
	_, _ = fmt.Fprint(cli.errOut, label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.errOut)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}
