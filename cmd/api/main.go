package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Overland-East-Bay/greetings-api/internal/adapters/httpapi"
	memgreetingrepo "github.com/Overland-East-Bay/greetings-api/internal/adapters/memory/greetingrepo"
	memidempotency "github.com/Overland-East-Bay/greetings-api/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/greetings-api/internal/app/greetings"
	platformclock "github.com/Overland-East-Bay/greetings-api/internal/platform/clock"
	"github.com/Overland-East-Bay/greetings-api/internal/platform/config"
	"github.com/Overland-East-Bay/greetings-api/internal/platform/logging"
	idempotencyport "github.com/Overland-East-Bay/greetings-api/internal/ports/out/idempotency"
)

// Populated at build-time via -ldflags.
var version = "dev"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "greetings-api",
		Usage:   "Serve the greetings REST API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a TOML config file",
				Sources: cli.EnvVars("GREETINGS_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (overrides config and GREETINGS_ADDR)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error, fatal, panic)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (json, console)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			return serve(ctx, cfg, logger)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run greetings-api")
	}
}

func loadConfig(c *cli.Command) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, fmt.Errorf("invalid environment: %w", err)
	}
	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	clk := platformclock.NewSystemClock()

	greetingRepo := memgreetingrepo.NewRepo()
	var idemStore idempotencyport.Store
	if cfg.IdempotencyTTL.Duration > 0 {
		idemStore = memidempotency.NewStore(clk, cfg.IdempotencyTTL.Duration)
	}

	api := httpapi.NewServer(greetings.NewService(greetingRepo), idemStore, clk)
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{Logger: logger})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Bool("idempotency", idemStore != nil).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
