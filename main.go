package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gridsnake/ai"
	"gridsnake/capture"
	"gridsnake/config"
	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/terminal"
	"gridsnake/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// legacyCollisionIndex is the first body segment the old rules checked
const legacyCollisionIndex = 4

func main() {
	configPath := flag.String("config", "", "JSON settings file, created with defaults if missing and watched for speed changes")
	speed := flag.Int("speed", 0, "Ticks per second (0 = from config)")
	gridSize := flag.Int("grid", 0, "Pixels per cell (0 = from config)")
	width := flag.Int("width", 0, "Board width in pixels (0 = from config)")
	height := flag.Int("height", 0, "Board height in pixels (0 = from config)")
	frontend := flag.String("frontend", "", "window, terminal or headless (empty = from config)")
	autoplay := flag.Bool("autoplay", false, "Let the Q-learning agent steer")
	seed := flag.Uint64("seed", 0, "Random seed (0 = from config, or the clock)")
	legacyCollision := flag.Bool("legacy-collision", false, "Only check the body from the fifth segment for self-collision")
	captureDir := flag.String("capture-dir", "", "Save PNG frames into this directory")
	captureEvery := flag.Int("capture-every", -1, "Capture every N ticks in addition to resets (-1 = from config)")
	maxTicks := flag.Int("max-ticks", -1, "Quit after N ticks (-1 = from config, 0 = never)")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Exitf("loading config: %v", err)
	}

	// Flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "speed":
			cfg.Speed = *speed
		case "grid":
			cfg.GridSize = *gridSize
		case "width":
			cfg.ScreenWidth = *width
		case "height":
			cfg.ScreenHeight = *height
		case "frontend":
			cfg.Frontend = *frontend
		case "autoplay":
			cfg.Autoplay = *autoplay
		case "seed":
			cfg.Seed = *seed
		case "legacy-collision":
			cfg.LegacyCollision = *legacyCollision
		case "capture-dir":
			cfg.CaptureDir = *captureDir
		case "capture-every":
			cfg.CaptureEvery = *captureEvery
		case "max-ticks":
			cfg.MaxTicks = *maxTicks
		}
	})
	if err := cfg.Validate(); err != nil {
		glog.Exitf("invalid config: %v", err)
	}

	stats, err := run(cfg, *configPath)
	if err != nil {
		glog.Exitf("%v", err)
	}
	printSummary(stats)
}

func run(cfg *config.AppConfig, configPath string) (*manager.StateManager, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	glog.Infof("starting %s frontend, board %dx%d, seed %d", cfg.Frontend, cfg.Board().Width, cfg.Board().Height, seed)

	stats := manager.NewStateManager()
	opts := game.Options{
		Board: cfg.Board(),
		Rand:  game.NewRand(seed),
		Stats: stats,
	}
	if cfg.LegacyCollision {
		opts.CollisionFrom = legacyCollisionIndex
	}
	g, err := game.NewGame(opts)
	if err != nil {
		return nil, errors.Wrap(err, "creating game")
	}

	var (
		input game.InputSource
		sinks game.MultiSink
		clock game.Clock
	)
	switch cfg.Frontend {
	case config.FrontendWindow:
		renderer := ui.NewRenderer(cfg.Board(), cfg.GridSize, stats)
		defer renderer.Close()
		input, clock = renderer, ui.NewFrameClock(cfg.Speed)
		sinks = append(sinks, renderer)
	case config.FrontendTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, errors.Wrap(err, "opening terminal")
		}
		term, err := terminal.New(screen)
		if err != nil {
			return nil, err
		}
		defer term.Close()
		ticker := game.NewTickerClock(cfg.Speed)
		defer ticker.Stop()
		input, clock = term, ticker
		sinks = append(sinks, term)
	case config.FrontendHeadless:
		ticker := game.NewTickerClock(cfg.Speed)
		defer ticker.Stop()
		clock = ticker
	}

	if cfg.CaptureDir != "" {
		rec, err := capture.NewRecorder(cfg.CaptureDir, cfg.CaptureEvery, cfg.GridSize)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, rec)
		defer func() { glog.Infof("captured %d frames into %s", rec.Saved(), cfg.CaptureDir) }()
	}

	if cfg.Autoplay {
		pilot := ai.NewAutopilot(ai.NewQLearning(rand.New(rand.NewSource(seed+1))), input)
		input = pilot
		sinks = append(sinks, pilot)
	}
	if cfg.MaxTicks > 0 {
		input = &game.TickLimit{Source: input, Max: cfg.MaxTicks}
	}

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(c *config.AppConfig) {
				if c.Speed <= 0 && cfg.Frontend != config.FrontendHeadless {
					glog.Warningf("ignoring speed %d for the %s frontend", c.Speed, cfg.Frontend)
					return
				}
				glog.Infof("config changed, speed now %d", c.Speed)
				clock.SetRate(c.Speed)
			})
			if err != nil {
				glog.Warningf("config watch stopped: %v", err)
			}
		}()
	}

	err = g.Run(ctx, input, sinks, clock)
	last := g.Finish()
	glog.Infof("round %s closed at length %d", last.ID, last.Length)
	if errors.Is(err, context.Canceled) {
		glog.Info("interrupted")
		err = nil
	}
	return stats, err
}

func printSummary(stats *manager.StateManager) {
	fmt.Printf("Rounds: %d  Best: %d  Average: %.2f  Median: %.1f\n",
		stats.GamesPlayed(), stats.HighScore(), stats.AverageLength(), stats.MedianLength())
}
