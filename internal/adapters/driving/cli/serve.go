package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/logger"
)

var (
	serveMetricsAddr string
	metricsAddr      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run background maintenance",
	Long: `Runs the scheduler (embedding backfill, stale session reset) and serves
Prometheus metrics until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Prometheus metrics commands",
}

var metricsServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics",
	Long:  `Exposes pipeline metrics on /metrics until interrupted.`,
	Args:  cobra.NoArgs,
	RunE:  runMetricsServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", ":9464", "metrics listen address (empty to disable)")
	metricsServeCmd.Flags().StringVar(&metricsAddr, "addr", ":9464", "listen address")

	metricsCmd.AddCommand(metricsServeCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	errCh := make(chan error, 2)
	if serveMetricsAddr != "" && metricsHandler != nil {
		go func() { errCh <- serveMetrics(ctx, serveMetricsAddr) }()
		cmd.Printf("Metrics on http://localhost%s/metrics\n", serveMetricsAddr)
	}
	go func() { errCh <- runScheduler(ctx) }()

	cmd.Println("voiceos running. Press Ctrl+C to stop.")
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func runMetricsServe(cmd *cobra.Command, _ []string) error {
	if metricsHandler == nil {
		return errors.New("metrics not configured")
	}
	cmd.Printf("Metrics on http://localhost%s/metrics\n", metricsAddr)
	return serveMetrics(commandContext(cmd), metricsAddr)
}

// runScheduler runs the scheduler until ctx is done, honouring the master switch.
func runScheduler(ctx context.Context) error {
	if !schedulerConfig.Enabled {
		logger.Info("Scheduler disabled")
		<-ctx.Done()
		return nil
	}
	go func() {
		<-ctx.Done()
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
	}()
	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
