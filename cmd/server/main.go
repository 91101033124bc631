package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lehmann314159/navigator/internal/config"
	"github.com/lehmann314159/navigator/internal/database"
	"github.com/lehmann314159/navigator/internal/handlers"
	"github.com/lehmann314159/navigator/internal/repository"
)

func main() {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:          "server",
		Short:        "Serve the navigator JSON API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath, verbose)
		},
	}
	root.Flags().StringVar(&configPath, "config", "navigator.toml", "configuration file")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, configPath string, verbose bool) error {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})

	// Load configuration, then let the environment override it
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize database
	db, err := database.New(cfg.Server.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initialize repository
	repo := repository.New(db)

	router := handlers.NewRouter(repo, handlers.Options{
		Logger:         logger,
		FaviconService: cfg.Navigator.FaviconService,
		Version:        cfg.Navigator.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting server", "addr", cfg.Server.Addr, "data_dir", cfg.Server.DataDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
