package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/locvowork/employee_records/internal/bootstrap"
	"github.com/locvowork/employee_records/internal/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewApp()
	if err := app.Initialize(rootCtx); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.ErrorLog(rootCtx, "Failed to release resources: %v", err)
		}
	}()

	group, gctx := errgroup.WithContext(rootCtx)
	group.Go(func() error {
		return app.Run(gctx)
	})

	if err := group.Wait(); err != nil {
		logger.ErrorLog(rootCtx, "server stopped with error: %v", err)
		return
	}
	logger.InfoLog(rootCtx, "all services stopped")
}
