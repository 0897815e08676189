package logsvc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/user"
)

// Logger writes structured lines with zerolog and, when a Rollbar token is
// configured, forwards warnings and errors to Rollbar.
type Logger struct {
	zl      zerolog.Logger
	rollbar bool
	exit    func(int) // mockable
}

var _ core.Logger = (*Logger)(nil)

func New(out io.Writer, conf *core.Config, runID string) *Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(conf.Log.Level)
	if err != nil || conf.Log.Level == "" {
		lvl = zerolog.InfoLevel
	}
	if conf.Log.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := &Logger{
		zl: zerolog.New(out).Level(lvl).With().
			Timestamp().
			Str("app", conf.AppName).
			Str("env", conf.Env).
			Str("run_id", runID).
			Logger(),
		exit: os.Exit,
	}

	if conf.RollbarToken != "" {
		rollbar.SetToken(conf.RollbarToken)
		rollbar.SetEnvironment(conf.Env)
		rollbar.SetCodeVersion(conf.Build)
		rollbar.SetStackTracer(rollbarerrors.StackTracer)
		rollbar.SetCustom(map[string]interface{}{"run_id": runID})
		rollbar.SetEnabled(!conf.Debug)
		l.rollbar = !conf.Debug
	}
	return l
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop(), exit: os.Exit}
}

// Close waits for pending Rollbar items to be sent.
func (l *Logger) Close() {
	if l.rollbar {
		rollbar.Wait()
	}
}

type entry struct {
	err    error
	fields map[string]interface{}
	usr    *user.User
}

// parse splits args into an error, a logged-in user.User and fields.
// expected fmt: error | map[string]interface{} | user.User | key, value pairs
func parse(args []interface{}) entry {
	e := entry{fields: make(map[string]interface{})}
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			if e.err == nil {
				e.err = arg
			}
		case map[string]interface{}:
			for k, v := range arg {
				e.fields[k] = v
			}
		case user.User:
			if e.usr == nil { // only set one User
				usr := arg
				e.usr = &usr
			}
		case string:
			if i+1 < len(args) {
				e.fields[arg] = args[i+1]
				i++
			} else {
				e.fields["extra"] = arg
			}
		default:
			e.fields["arg"+strconv.Itoa(i)] = fmt.Sprintf("%+v", arg)
		}
	}
	return e
}

func (l *Logger) write(ev *zerolog.Event, e entry, msg string) {
	if e.err != nil {
		ev = ev.Err(e.err)
	}
	if e.usr != nil {
		ev = ev.Str("username", e.usr.Username)
	}
	ev.Fields(e.fields).Msg(msg)
}

func (l *Logger) report(level string, e entry, msg string) {
	if !l.rollbar {
		return
	}
	if e.usr != nil {
		rollbar.SetPerson(strconv.Itoa(e.usr.ID), e.usr.Username, "")
	} else {
		rollbar.ClearPerson()
	}
	args := []interface{}{msg}
	if e.err != nil {
		args = []interface{}{e.err}
		e.fields["message"] = msg
	}
	if len(e.fields) > 0 {
		args = append(args, e.fields)
	}
	rollbar.Log(level, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.write(l.zl.Debug(), parse(args), msg)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.write(l.zl.Info(), parse(args), msg)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	e := parse(args)
	l.write(l.zl.Warn(), e, msg)
	l.report(rollbar.WARN, e, msg)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	e := parse(args)
	l.write(l.zl.Error(), e, msg)
	l.report(rollbar.ERR, e, msg)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	e := parse(args)
	l.write(l.zl.WithLevel(zerolog.FatalLevel), e, msg)
	l.report(rollbar.CRIT, e, msg)
	l.Close()
	l.exit(1)
}
