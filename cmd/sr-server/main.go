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

	"github.com/spf13/cobra"

	"stockroom/internal/client"
	"stockroom/internal/server"
	"stockroom/internal/shared"
)

var (
	envFile string
	output  string
)

var rootCmd = &cobra.Command{
	Use:           "sr-server",
	Short:         "stockroom item API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load configuration and serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := shared.NewLoader(envFile).Load()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration with the API key redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := shared.NewLoader(envFile).Load()
		if err != nil {
			return err
		}
		return client.Print(cmd.OutOrStdout(), output, cfg)
	},
}

func serve(ctx context.Context, cfg *shared.Config) error {
	log := shared.NewLogger(cfg, os.Stderr)

	store, closeStore, err := server.NewStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	api, err := server.NewAPI(cfg, store, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(shared.ConfigFields(cfg)).Info("sr-server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read beneath the process environment")
	configCmd.Flags().StringVarP(&output, "output", "o", client.OutputYAML, "output format: json or yaml")
	rootCmd.AddCommand(serveCmd, configCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var cfgErr *shared.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, "sr-server: refusing to start:", err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "sr-server:", err)
		os.Exit(1)
	}
}
