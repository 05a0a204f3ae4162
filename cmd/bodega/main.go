// Command bodega runs the brewery tank dashboard service: a CRUD API over
// the tank store plus a Gemini-backed assistant for questions about the
// current data.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bodega/internal/api"
	"bodega/internal/assistant"
	"bodega/internal/client"
	"bodega/internal/config"
	"bodega/internal/store"
)

var (
	cfgPath string
	verbose bool
	apiURL  string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bodega",
	Short: "Brewery tank dashboard service",
	Long: `bodega serves the fermentation tank dashboard API: tank CRUD over a
relational store, plus an assistant endpoint that answers questions about
the current tank data via Gemini.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		st, err := store.Open(store.Driver(cfg.Database.Driver), cfg.Database.DSN(), logger)
		if err != nil {
			return err
		}
		defer st.Close()

		bridge := assistant.NewBridge(assistant.GeminiConfig{
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			BaseURL: cfg.Assistant.BaseURL,
			Timeout: cfg.Assistant.TimeoutDuration(),
		}, logger)
		if cfg.Assistant.APIKey == "" {
			logger.Warn("assistant API key not configured; assistant will answer with its fixed fallback message")
		}

		handler := api.New(st, bridge, logger)
		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler.Routes(),
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("serving", zap.String("addr", cfg.Server.Addr),
				zap.String("driver", cfg.Database.Driver))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant about the current tanks",
	Long: `ask fetches the current tank list from a running bodega server and
forwards the question to the assistant, printing its reply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
		defer cancel()

		tanks, err := client.New(apiURL, logger).ListTanks(ctx)
		if err != nil {
			return fmt.Errorf("fetch tanks from %s: %w", apiURL, err)
		}

		bridge := assistant.NewBridge(assistant.GeminiConfig{
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			BaseURL: cfg.Assistant.BaseURL,
			Timeout: cfg.Assistant.TimeoutDuration(),
		}, logger)

		answer := bridge.Ask(ctx, tanks, question)
		fmt.Println(answer.Text)
		if answer.Unavailable {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "bodega.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	askCmd.Flags().StringVar(&apiURL, "api-url", "http://localhost:8080", "base URL of a running bodega server")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
