package main

import (
	"os"

	"github.com/expenses-tracker/reports-backend/internal/config"
	"github.com/expenses-tracker/reports-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	root := newRootCmd(&app{
		loadConfig: config.LoadSource,
		openSource: repository.OpenDataSource,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
