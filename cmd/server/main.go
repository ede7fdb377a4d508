// Command server runs the access-control HTTP API.
//
// @title                       Access Control API
// @version                     1.0
// @description                 Credential verification, account lockout, session tokens and role-based authorization.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/appiso/access-control/docs"
	"github.com/appiso/access-control/internal/app"
	"github.com/appiso/access-control/internal/infrastructure/config"
	"github.com/appiso/access-control/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "access-control"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "access-control",
	})

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init application")
	}

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped")
		os.Exit(1)
	}
}
