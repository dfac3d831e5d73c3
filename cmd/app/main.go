package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderflow/cmd"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatalf("orderflow: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "orderflow",
		Short:         "Field-service order pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return serve(c.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP intake, the stage webhooks and the background jobs",
		RunE: func(c *cobra.Command, _ []string) error {
			return serve(c.Context())
		},
	})
	root.AddCommand(newSimulateCommand())

	return root
}

func newSimulateCommand() *cobra.Command {
	opts := cmd.SimulateOptions{}
	var logLevel string

	c := &cobra.Command{
		Use:   "simulate",
		Short: "Stream one delivery along a route file and print the tracking events",
		Long: `Stream one delivery along a route file and print the tracking events.

The route file is a YAML or JSON list of {latitude, longitude} points. The
first point is the warehouse and the last one the delivery address.

Example:
  orderflow simulate --route ./route.yaml --address "Rua Principal 1, Leiria" --interval 1s`,
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Simulate(c.Context(), opts, c.OutOrStdout(), newLogger(logLevel, os.Stderr))
		},
	}

	c.Flags().StringVar(&opts.RoutePath, "route", "", "route file (required)")
	c.Flags().StringVar(&opts.OrderID, "order-id", "", "order id, generated when empty")
	c.Flags().StringVar(&opts.FieldServiceID, "field-service-id", "simulator", "field service id")
	c.Flags().StringVar(&opts.Address, "address", "", "delivery address (required)")
	c.Flags().StringSliceVar(&opts.Materials, "material", []string{"cimento=1"}, "material_id=quantity, repeatable")
	c.Flags().IntVar(&opts.Waypoints, "waypoints", 9, "waypoints sampled before the destination")
	c.Flags().DurationVar(&opts.Interval, "interval", 10*time.Second, "pause between waypoints")
	c.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	_ = c.MarkFlagRequired("route")
	_ = c.MarkFlagRequired("address")

	return c
}

func serve(ctx context.Context) error {
	cfg, err := cmd.LoadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	app, err := cmd.NewCompositionRoot(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Error("shutdown", "error", closeErr)
		}
	}()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(ctx); err != nil {
		return err
	}
	defer jobManager.StopAll()

	dispatcher := app.CreateDispatcher()
	if consumer := app.CreateKafkaConsumer(dispatcher); consumer != nil {
		consumerCtx, stopConsumer := context.WithCancel(ctx)
		consumer.Start(consumerCtx)
		defer func() {
			if closeErr := consumer.Close(); closeErr != nil {
				logger.Error("kafka consumer close", "error", closeErr)
			}
		}()
		defer stopConsumer()
	}

	e := app.CreateHTTPRouter(dispatcher)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort))
	}()
	logger.Info("orderflow started", "port", cfg.HTTPPort, "bus", cfg.BusBackend)

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newLogger(level string, w *os.File) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
