package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/chronos/internal/api"
	"github.com/wonny/chronos/internal/api/handlers"
	"github.com/wonny/chronos/internal/scheduler"
	"github.com/wonny/chronos/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the workspace REST API server.

This command:
- Serves the aggregated workspace view
- Relays universe mutations to the candidate engine
- Triggers scans and delivers one-shot scan results

Endpoints:
  GET   /health                      - Health check
  GET   /api/workspace               - Aggregated workspace view
  POST  /api/universes               - Create universe
  PATCH /api/universes/{id}          - Update universe
  POST  /api/universes/{id}/stocks   - Add ticker to universe
  POST  /api/scan                    - Trigger a scan

Example:
  go run ./cmd/chronos serve
  go run ./cmd/chronos serve --port 8090`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Chronos API Server ===")

	// 1. Wire application components
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	// Override port if flag is set
	if servePort != "" {
		rt.cfg.Port = servePort
	}

	log := rt.log
	log.WithFields(map[string]interface{}{
		"port":   rt.cfg.Port,
		"env":    rt.cfg.Env,
		"engine": rt.cfg.Engine.BaseURL,
	}).Info("Initializing API server")

	// 2. Create handlers
	workspaceHandler := handlers.NewWorkspaceHandler(rt.engine, rt.aggregator, rt.orchestrator, log)
	universeHandler := handlers.NewUniverseHandler(rt.gateway, log)
	scanHandler := handlers.NewScanHandler(rt.orchestrator, log)

	// 3. Create router
	router := api.NewRouter(workspaceHandler, universeHandler, scanHandler, log)

	// 4. Create server
	server := api.New(rt.cfg, log, router)

	// 5. Start scheduler if enabled
	var sched *scheduler.Scheduler
	if rt.cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		sched.AddJob(jobs.NewScanJob(rt.orchestrator, log,
			rt.cfg.Scheduler.UniverseID, rt.cfg.Scheduler.TemplateID, rt.cfg.Scheduler.ScanSchedule))
		sched.Start()
		log.Info("Scheduler started")
	}

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET   /health")
	fmt.Println("  GET   /api/workspace")
	fmt.Println("  POST  /api/universes")
	fmt.Println("  PATCH /api/universes/{id}")
	fmt.Println("  POST  /api/universes/{id}/stocks")
	fmt.Println("  POST  /api/scan")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
