package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/awareness/internal/awareness"
	"github.com/l1jgo/awareness/internal/config"
	coresys "github.com/l1jgo/awareness/internal/core/system"
	"github.com/l1jgo/awareness/internal/data"
	"github.com/l1jgo/awareness/internal/quadtree"
	"github.com/l1jgo/awareness/internal/sim"
	"github.com/l1jgo/awareness/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          awarenessd  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     spatial awareness for open worlds     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config; a missing default file falls back to built-in values
	cfgPath := "config/server.toml"
	explicit := false
	if p := os.Getenv("AWARENESS_CONFIG"); p != "" {
		cfgPath = p
		explicit = true
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log = log.With(zap.String("run", uuid.NewString()))

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Load terrain enumeration
	printSection("data")
	terrains, err := data.LoadTerrainTable(cfg.Data.TerrainList)
	if err != nil {
		return fmt.Errorf("load terrain table: %w", err)
	}
	printStat("terrains", terrains.Count())
	for _, t := range terrains.Terrains() {
		printStat("  "+terrains.Name(t), int(t))
	}

	// 4. Build the per-terrain indices and the awareness service
	a := cfg.Awareness
	registry := world.NewRegistry(terrains.Terrains(), a.WorldExtent,
		quadtree.WithCapacity(a.NodeCapacity),
		quadtree.WithMaxDepth(a.MaxDepth),
	)
	svc := awareness.NewService(registry, awareness.Config{
		AwareRange:   a.AwareRange,
		DefaultRange: a.DefaultRange,
	}, log.Named("awareness"))
	printOK(fmt.Sprintf("indices ready (extent ±%.0f, capacity %d)", a.WorldExtent, a.NodeCapacity))
	fmt.Println()

	if !cfg.Simulation.Enabled {
		log.Info("simulation disabled, nothing to drive the service")
		return nil
	}

	// 5. Spawn the simulated population
	printSection("simulation")
	pop := sim.NewPopulation(svc, registry.Terrains(), cfg.Simulation, log.Named("sim"))
	printStat("drifters", pop.Populate())
	printStat("indexed", registry.Count())

	// 6. Create systems and register with runner
	runner := coresys.NewRunner()
	runner.Register(sim.NewSpawnSystem(pop))
	runner.Register(sim.NewMoveSystem(pop))
	runner.Register(sim.NewAwarenessSystem(pop))
	runner.Register(sim.NewReportSystem(pop, registry, cfg.Simulation.ReportEvery, log.Named("report")))

	// 7. Start tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	tickRate := cfg.Simulation.TickRate
	if tickRate <= 0 {
		tickRate = 200 * time.Millisecond
	}
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if d := cfg.Simulation.Duration; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		deadline = timer.C
	}

	printReady(fmt.Sprintf("tick loop started (tick: %s, workers: %d)", tickRate, cfg.Simulation.Workers))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			runner.Tick(tickRate)
			if took := time.Since(start); took > tickRate {
				log.Warn("tick overran", zap.Duration("took", took), zap.Duration("budget", tickRate))
			}
		case <-deadline:
			log.Info("simulation finished", zap.Duration("duration", cfg.Simulation.Duration))
			return shutdown(pop, registry, svc, log)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return shutdown(pop, registry, svc, log)
		}
	}
}

func shutdown(pop *sim.Population, registry *world.Registry, svc *awareness.Service, log *zap.Logger) error {
	pop.Despawn()
	st := svc.Stats()
	log.Info("stopped",
		zap.Uint64("adds", st.Adds),
		zap.Uint64("removes", st.Removes),
		zap.Uint64("moves", st.Moves),
		zap.Uint64("updates", st.Updates),
		zap.Uint64("rejected", st.Rejected),
		zap.Int("left_indexed", registry.Count()),
	)
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
