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

	"menuboard/internal/client"
	"menuboard/internal/config"
	"menuboard/internal/loader"
	"menuboard/internal/logging"
	"menuboard/internal/monitoring"
	"menuboard/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	addr       = flag.String("addr", "", "Web server address (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}

	log, err := logging.New(cfg.Logging(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if log.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	monitor := monitoring.NewMonitor()
	api := client.NewAPIClient(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(log.With().Str("component", "client").Logger()),
	)
	machine := loader.New(api,
		loader.WithLogger(log.With().Str("component", "loader").Logger()),
		loader.WithRecorder(monitor),
	)

	srv := web.NewServer(machine,
		web.WithLogger(log.With().Str("component", "web").Logger()),
		web.WithStatus(monitor.GetMetrics),
	)

	server := &http.Server{
		Addr:    cfg.Web.Addr,
		Handler: srv.Router(),
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg.Metrics, monitor, log)
	}

	machine.Activate(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("metrics server shutdown")
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("web server shutdown")
		}
	}()

	log.Info().
		Str("addr", cfg.Web.Addr).
		Str("api", api.BaseURL()).
		Msg("starting web server")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("web server error")
	}
}

func startMetricsServer(cfg config.MetricsConfig, monitor *monitoring.Monitor, log zerolog.Logger) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(cfg.Path, gin.WrapH(monitor.Handler()))

	metricsServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: metricsRouter,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("path", cfg.Path).Msg("starting metrics server")
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	return metricsServer
}
