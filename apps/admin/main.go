package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
	logsvc "github.com/trezcool/escondite/services/logger"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
	logger := logsvc.New(os.Stderr, conf, uuid.NewString())

	cli := newCommandLine(conf, logger, newContainer(conf, logger), os.Stdin, os.Stdout, os.Stderr)
	err = cli.run(os.Args)
	cli.close()
	if err != nil {
		if !errors.Is(err, errHelp) {
			_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
			if core.IsValidationError(err) {
				logger.Warn("command rejected", err, "args", os.Args[1:])
			} else {
				logger.Error("command failed", err, "args", os.Args[1:])
			}
		}
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}
