package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"detectd/internal/config"
	"detectd/internal/detector"
	"detectd/internal/fetch"
	"detectd/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the graph and serve detection requests (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), getenv)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// loadDetector loads the category map and graph. Any failure here is fatal.
func loadDetector(cfg config.Config, pub detector.EventPublisher) (*detector.Detector, error) {
	return detector.Load(detector.LoadConfig{
		Backend: detector.BackendConfig{
			Name:        cfg.Backend,
			GraphPath:   cfg.GraphPath,
			GraphConfig: cfg.GraphConfig,
		},
		LabelsPath:   cfg.LabelsPath,
		IndexesPath:  cfg.IndexesPath,
		MinScore:     float32(cfg.MinScore),
		MaxInputSide: cfg.MaxInputSide,
		Publisher:    pub,
	})
}

func newSource(cfg config.Config) (*fetch.Source, error) {
	uploads, err := fetch.NewUploadStore(cfg.UploadDir, cfg.KeepUploads, cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	downloads := fetch.NewDownloader(cfg.TempDir, time.Duration(cfg.FetchTimeoutSeconds)*time.Second, cfg.MaxDownloadBytes)
	return &fetch.Source{Downloads: downloads, Uploads: uploads}, nil
}

func configureHTTP(cfg config.Config, logger zerolog.Logger) {
	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	// room for the multipart envelope around the largest accepted image
	httpapi.SetMaxBodyBytes(cfg.MaxUploadBytes + 1<<20)
	httpapi.SetInferTimeoutSeconds(cfg.InferTimeoutSeconds)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
}

func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	det, err := loadDetector(cfg, logPublisher{log: logger})
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}
	src, err := newSource(cfg)
	if err != nil {
		_ = det.Close()
		return err
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	configureHTTP(cfg, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(det, src),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("backend", cfg.Backend).
			Str("graph", cfg.GraphPath).
			Int("labels", det.Labels().Len()).
			Msg("detectd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			_ = det.Close()
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	// Requests still running after the drain window give up waiting.
	cancelBase()
	if err := det.Close(); err != nil {
		logger.Warn().Err(err).Msg("close detector")
	}
	return nil
}
