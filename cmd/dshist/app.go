package main

import (
	"fmt"

	"github.com/dshist/dshist/internal/config"
	"github.com/dshist/dshist/internal/database"
	"github.com/dshist/dshist/internal/executor"
	"github.com/dshist/dshist/internal/logger"
	"github.com/dshist/dshist/internal/services"
	"github.com/dshist/dshist/internal/usecase"
)

// app holds what every command needs. close must be called once the command
// is done.
type app struct {
	explore *usecase.Explore
	log     *logger.Logger
	close   func()
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dbCtx, err := database.CreateDatabase(dbPath)
	if err != nil {
		log.Sync()
		return nil, err
	}

	exec := executor.NewLocal(services.NewJobService(dbCtx), log)
	explore := usecase.NewExplore(dbCtx, exec, usecase.Options{
		User:              cfg.User,
		StatusConcurrency: cfg.StatusConcurrency,
		MetadataTimeout:   cfg.MetadataTimeout,
		Logger:            log,
	})

	return &app{
		explore: explore,
		log:     log,
		close: func() {
			exec.Wait()
			if err := database.CloseDatabase(dbCtx); err != nil {
				log.Warn("failed to close database", "error", err)
			}
			log.Sync()
		},
	}, nil
}
