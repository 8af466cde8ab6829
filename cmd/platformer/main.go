package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pondhero/platformer/internal/config"
	"github.com/pondhero/platformer/internal/data"
	"github.com/pondhero/platformer/internal/game"
	"github.com/pondhero/platformer/internal/geom"
	"github.com/pondhero/platformer/internal/render"
	"github.com/pondhero/platformer/internal/render/term"
	"github.com/pondhero/platformer/internal/scripting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(title string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m %-41s \033[36;1m│\033[0m\n", center(title, 41))
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func center(s string, width int) string {
	pad := width - len([]rune(s))
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}

func printSection(title string) {
	lineLen := 46 - len([]rune(title)) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len([]rune(label)) - len(numStr)
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

// ── Main game logic ───────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/platformer.toml"
	if p := os.Getenv("PLATFORMER_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the TOML config")
	headless := flag.Bool("headless", false, "run without a terminal")
	frames := flag.Int("frames", -1, "stop after this many frames (overrides config)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *headless {
		cfg.Render.Backend = "headless"
	}
	if *frames >= 0 {
		cfg.Game.Frames = *frames
	}
	toTerm := cfg.Render.Backend == "term"

	// 2. Init logger. The terminal backend owns stdout.
	log, err := newLogger(cfg.Logging, toTerm)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if cfg.Profile.Mode != "" {
		defer startProfile(cfg.Profile).Stop()
	}

	printBanner(cfg.Game.Title)

	// 3. Load content
	printSection("Content")
	content, err := data.Load(data.Paths{
		Sprites:  cfg.Content.Sprites,
		Tilesets: cfg.Content.Tilesets,
		Prefabs:  cfg.Content.Prefabs,
		Rooms:    cfg.Content.Rooms,
	})
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	printStat("Sprites", content.Sprites.Count())
	printStat("Tilesets", content.Tilesets.Count())
	printStat("Prefabs", content.Prefabs.Count())
	printStat("Rooms", content.Rooms.Count())

	// 4. Load behaviours
	scripts, err := scripting.NewEngine(cfg.Content.Scripts, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer scripts.Close()
	printStat("Behaviours", len(scripts.Names()))
	fmt.Println()

	background, err := data.ParseColor(cfg.Render.Background)
	if err != nil {
		return fmt.Errorf("render.background: %w", err)
	}

	// 5. Open the render backend
	var (
		surface render.Surface
		events  <-chan tcell.Event
	)
	quit := make(chan struct{})
	defer close(quit)
	if toTerm {
		ts, err := term.Open(cfg.Render.Scale)
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		defer ts.Close()
		surface = ts
		events = ts.Events(quit)
	} else {
		surface = render.NewRecorder()
		printOK("Headless renderer")
	}

	// 6. Build the game and enter the start room
	g := game.New(content, scripts, surface, events, game.Options{
		TickRate:      cfg.Game.TickRate,
		StartRoom:     geom.Pt(cfg.Game.StartRoom[0], cfg.Game.StartRoom[1]),
		Frames:        cfg.Game.Frames,
		Seed:          cfg.Game.Seed,
		Recycle:       cfg.World.RecycleEntities,
		Background:    background,
		ShowColliders: cfg.Render.DebugColliders,
	}, log)
	if err := g.LoadRoom(geom.Pt(cfg.Game.StartRoom[0], cfg.Game.StartRoom[1])); err != nil {
		return fmt.Errorf("load start room: %w", err)
	}
	g.Redraw()
	printReady(fmt.Sprintf("Game loop (tick: %s)", cfg.Game.TickRate))

	// 7. Run until quit or signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := g.Run(ctx); err != nil {
		return err
	}
	log.Info("game stopped", zap.Int("frames", g.Frames()))
	return nil
}

func startProfile(cfg config.ProfileConfig) interface{ Stop() } {
	mode := profile.CPUProfile
	switch cfg.Mode {
	case "mem":
		mode = profile.MemProfileAllocs
	case "trace":
		mode = profile.TraceProfile
	}
	return profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook, profile.Quiet)
}

func newLogger(cfg config.LoggingConfig, toFile bool) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
		if !toFile {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if toFile && cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
