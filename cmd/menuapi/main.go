package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menuboard/internal/backend"
	"menuboard/internal/config"
	"menuboard/internal/database"
	"menuboard/internal/logging"
)

var configFile = flag.String("config", "", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Backend.Driver, cfg.Backend.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	store := backend.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if cfg.Backend.Seed {
		data, err := backend.DefaultSeed()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load seed data")
		}
		n, err := store.Seed(data)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed database")
		}
		log.Info().Int("items", n).Msg("seeded menu")
	}

	handler := backend.NewHandler(store, log.With().Str("component", "menuapi").Logger())
	server := &http.Server{
		Addr:         cfg.Backend.Addr,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Backend.Addr).
			Str("driver", cfg.Backend.Driver).
			Msg("starting menu api")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("menu api error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down menu api")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("menu api shutdown")
	}
}
