package main

import (
	"context"
	"log"
	"os"

	"github.com/teamunity/lms/apps/shared"
	"github.com/teamunity/lms/core"
	logsvc "github.com/teamunity/lms/services/logger"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf.Debug)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(false)

	stack, err := shared.NewStack(context.Background(), conf, false)
	if err != nil {
		logger.Fatal("setting up stores", err)
	}

	cli := commandLine{stack: stack, out: os.Stdout}
	err = cli.run(os.Args)
	if cErr := stack.Close(); cErr != nil {
		logger.Error("closing stores", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}
