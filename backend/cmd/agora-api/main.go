package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agora-forum/agora/backend/internal/router"
	"github.com/agora-forum/agora/backend/internal/setup"
	"github.com/agora-forum/agora/shared/config"
	"github.com/agora-forum/agora/shared/logger"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
)

var opts = struct {
	ConfigFolder    string        `long:"config_folder" env:"CONFIG_FOLDER" default:"backend/config" description:"path to folder with public.yaml and private.yaml"`
	Host            string        `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port            string        `long:"http.port" env:"PORT" default:"8080" description:"port to listen on"`
	ShutdownTimeout time.Duration `long:"http.shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"15s" description:"time to finish in-flight requests on shutdown"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Agora API"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg := config.MustLoad(opts.ConfigFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	srv := &http.Server{
		Addr:              opts.Host + ":" + opts.Port,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gr, grCtx := errgroup.WithContext(ctx)
	gr.Go(func() error {
		logger.Log.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		select {
		case s := <-sigs:
			logger.Log.Info("terminating", "signal", s.String())
		case <-grCtx.Done():
		}

		shutdownCtx, stop := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return errTerminated
	})

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) {
		logger.Log.Error("server unexpectedly closed", "error", err)
		deps.Storage.Cleanup()
		os.Exit(1)
	}
	logger.Log.Info("server stopped")
}
