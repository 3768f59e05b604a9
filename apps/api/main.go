package main

import (
	"context"
	"fmt"
	"log"

	echoapi "github.com/teamunity/lms/apps/api/echo"
	"github.com/teamunity/lms/apps/shared"
	"github.com/teamunity/lms/core"
	logsvc "github.com/teamunity/lms/services/logger"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf.Debug)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer func() { _ = logger.Sync() }()

	stack, err := shared.NewStack(context.Background(), conf, true)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up stores: %v", err), err)
	}
	defer func() {
		if err = stack.Close(); err != nil {
			logger.Error("Failed to close stores", err)
		}
	}()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build),
		map[string]interface{}{"driver": conf.Database.Driver, "sessions": conf.Session.Backend})
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		ReqLogger:     zl.Named("http"),
		UserSvc:       stack.UserSvc,
		ModuleSvc:     stack.ModuleSvc,
		AssignmentSvc: stack.AssignmentSvc,
		GradeSvc:      stack.GradeSvc,
		SwitchSvc:     stack.SwitchSvc,
		SessionMgr:    stack.SessionMgr,
		Gate:          stack.Gate,
		Pingers:       stack.Pingers,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
