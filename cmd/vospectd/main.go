// Package main is the voice identity daemon.
//
// vospectd assembles the pipeline (audio normalizer, embedding sidecar,
// voiceprint store, recording store) and serves the HTTP API.
//
// Usage:
//
//	vospectd --config vospect.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vospect/vospect/pkg/audio/normalize"
	"github.com/vospect/vospect/pkg/config"
	"github.com/vospect/vospect/pkg/httpapi"
	"github.com/vospect/vospect/pkg/metadata"
	"github.com/vospect/vospect/pkg/pipeline"
	"github.com/vospect/vospect/pkg/storage"
	"github.com/vospect/vospect/pkg/vecstore"
	"github.com/vospect/vospect/pkg/voiceprint"
	"github.com/vospect/vospect/pkg/voiceprint/remote"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "vospectd",
	Short:         "Voice identity enrollment and verification daemon",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "config file (YAML)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// One badger database backs both the voiceprint index and the
	// identity records; the key prefixes are disjoint.
	vectors, err := vecstore.NewBadger(vecstore.BadgerOptions{
		Dir: filepath.Join(cfg.DataDir, "db"),
		Log: logger,
	})
	if err != nil {
		return err
	}
	defer vectors.Close()
	meta := metadata.WrapBadger(vectors.DB())

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	extractor := remote.New(remote.Config{
		BaseURL: cfg.Extractor.BaseURL,
		Timeout: cfg.Extractor.Timeout,
	})
	engine := voiceprint.NewEngine(extractor, voiceprint.EngineOptions{Log: logger})
	logger.Info("loading embedding model", "base_url", cfg.Extractor.BaseURL)
	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("embedding sidecar not ready: %w", err)
	}
	defer engine.Close()

	pipe := pipeline.New(normalize.New(cfg.Audio.FFmpeg), engine, vectors, meta, blobs,
		pipeline.Options{
			Threshold: cfg.Verify.Threshold,
			WorkDir:   filepath.Join(cfg.DataDir, "work"),
			Log:       logger,
		})

	api := httpapi.New(pipe, logger)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "threshold", cfg.Verify.Threshold)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// openBlobStore builds the recording store the config asks for.
func openBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg)
		return storage.NewS3(client, cfg.Storage.Bucket, cfg.Storage.Prefix), nil
	default:
		return storage.NewLocal(filepath.Join(cfg.DataDir, "recordings"))
	}
}
