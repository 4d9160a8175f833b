package main

//	@title			HealthGenie API
//	@version		0.1.0
//	@description	Self-hosted BMI calculator and AI health advisor backed by the Gemini wire protocol.
//	@BasePath		/api/v1

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/HerbHall/healthgenie/api/swagger"
	"github.com/HerbHall/healthgenie/internal/advisor"
	"github.com/HerbHall/healthgenie/internal/bmi"
	"github.com/HerbHall/healthgenie/internal/config"
	"github.com/HerbHall/healthgenie/internal/dashboard"
	"github.com/HerbHall/healthgenie/internal/event"
	"github.com/HerbHall/healthgenie/internal/genie"
	"github.com/HerbHall/healthgenie/internal/registry"
	"github.com/HerbHall/healthgenie/internal/server"
	"github.com/HerbHall/healthgenie/internal/version"
	"github.com/HerbHall/healthgenie/internal/webhook"
	"github.com/HerbHall/healthgenie/internal/ws"
	"github.com/HerbHall/healthgenie/pkg/plugin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(version.Info())
		return
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Best-effort .env load so GOOGLE_API_KEY can sit next to the binary.
	_ = godotenv.Load()

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.New(viperCfg)

	// Initialize logger from configuration.
	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("HealthGenie server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	// Create shared services
	bus := event.NewBus(logger.Named("event"))
	logger.Info("event bus created", zap.String("component", "event"))

	// Create plugin registry
	reg := registry.New(logger.Named("registry"))
	logger.Info("plugin registry created", zap.String("component", "registry"))

	// Register all plugins (compile-time composition)
	modules := []plugin.Plugin{
		genie.New(),
		advisor.New(),
		bmi.New(),
		webhook.New(),
	}
	for _, m := range modules {
		if err := reg.Register(m); err != nil {
			logger.Fatal("failed to register plugin", zap.Error(err))
		}
	}

	// Validate dependency graph and API versions
	if err := reg.Validate(); err != nil {
		logger.Fatal("plugin validation failed", zap.Error(err))
	}

	// Initialize all plugins with dependencies
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reg.InitAll(ctx, func(name string) plugin.Dependencies {
		return plugin.Dependencies{
			Config:  cfg.Sub("plugins." + name),
			Logger:  logger.Named(name),
			Bus:     bus,
			Plugins: reg,
		}
	}); err != nil {
		logger.Fatal("failed to initialize plugins", zap.Error(err))
	}

	// Start plugins
	if err := reg.StartAll(ctx); err != nil {
		logger.Fatal("failed to start plugins", zap.Error(err))
	}

	// Create WebSocket handler streaming genie and advisor activity.
	wsHandler := ws.NewHandler(bus, logger.Named("ws"))
	logger.Info("websocket handler initialized", zap.String("component", "ws"))

	// Create and start HTTP server
	addr := viperCfg.GetString("server.host") + ":" + viperCfg.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	logger.Info("HTTP server configured",
		zap.String("component", "server"),
		zap.String("addr", addr),
	)
	devMode := viperCfg.GetBool("server.dev_mode")

	// Readiness tracks required plugins only. A degraded genie (still
	// resolving, or all candidates down) keeps the service ready; the
	// dashboard surfaces the connection state instead.
	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		for _, p := range reg.All() {
			info := p.Info()
			if !info.Required {
				continue
			}
			hc, ok := p.(plugin.HealthChecker)
			if !ok {
				continue
			}
			if hs := hc.Health(ctx); hs.Status == "unhealthy" {
				return fmt.Errorf("required plugin %s is unhealthy: %s", info.Name, hs.Message)
			}
		}
		return nil
	})
	dashboardHandler := dashboard.Handler()
	srv := server.New(addr, reg, logger, readyCheck, dashboardHandler, devMode, wsHandler)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("HealthGenie server ready", zap.String("addr", addr))

	// Print human-readable banner for users watching docker logs.
	port := viperCfg.GetString("server.port")
	if port == "" {
		port = "8080"
	}
	fmt.Fprintf(os.Stderr, "\n  HealthGenie %s is ready!\n  Open http://localhost:%s in your browser.\n\n", version.Short(), port)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	reg.StopAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("HealthGenie server stopped")
}
