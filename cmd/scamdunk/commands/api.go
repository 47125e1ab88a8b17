package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wonny/scamdunk/internal/api"
	"github.com/wonny/scamdunk/internal/api/handlers"
	"github.com/wonny/scamdunk/internal/metrics"
	"github.com/wonny/scamdunk/internal/realtime"
	"github.com/wonny/scamdunk/pkg/logger"
)

// version is reported by /health
var version = "dev"

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health               - Health check (inference backend, alert list)
  GET  /metrics              - Prometheus metrics
  POST /api/scan             - Score one ticker
  GET  /api/schemes          - List tracked schemes (?status=)
  GET  /api/schemes/{id}     - One scheme with its timeline
  POST /api/schemes/ingest   - Apply a daily batch
  GET  /api/promoters        - Promoter database (?risk=, ?active=)
  GET  /api/promoters/{id}   - One promoter
  GET  /ws/schemes           - Scheme event stream (websocket)

Example:
  go run ./cmd/scamdunk api
  go run ./cmd/scamdunk api --port 8080 --scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "scheduler", false, "run the scheduled jobs in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ScamDunk API Server ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"port":  cfg.Port,
		"env":   cfg.Env,
		"store": cfg.Schemes.Store,
		"ai":    cfg.AI.Enabled(),
	}).Info("Initializing API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	a, err := buildApp(ctx, cfg, log, hub)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	var limiter *rate.Limiter
	if cfg.ScanRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ScanRateLimit), cfg.ScanRateBurst)
	}

	router := api.NewRouter(api.Handlers{
		Health:    handlers.NewHealthHandler(a.healthClient(), a.alertList, version),
		Scan:      handlers.NewScanHandler(a.normalizer, a.alertList, a.strategy, limiter, log),
		Schemes:   handlers.NewSchemesHandler(a.tracking, log),
		Promoters: handlers.NewPromotersHandler(a.promoters, log),
		Hub:       hub,
	}, log)

	server := api.New(cfg, log, router)

	if apiWithScheduler {
		sched, err := newScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
