package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"gridsnake/game/types"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Frontends
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	ScreenWidth     int    `json:"screen_width"`
	ScreenHeight    int    `json:"screen_height"`
	GridSize        int    `json:"grid_size"`
	Speed           int    `json:"speed"` // Ticks per second
	Frontend        string `json:"frontend"`
	Autoplay        bool   `json:"autoplay"`
	Seed            uint64 `json:"seed"` // 0 picks a seed from the clock
	LegacyCollision bool   `json:"legacy_collision"`
	CaptureDir      string `json:"capture_dir"`
	CaptureEvery    int    `json:"capture_every"`
	MaxTicks        int    `json:"max_ticks"` // 0 runs until quit
}

// Default returns the built-in settings
func Default() *AppConfig {
	return &AppConfig{
		ScreenWidth:  types.ScreenWidth,
		ScreenHeight: types.ScreenHeight,
		GridSize:     types.GridSize,
		Speed:        types.Speed,
		Frontend:     FrontendWindow,
		CaptureEvery: 50,
	}
}

// Load reads the settings at path over the defaults. A missing file is
// created with the defaults. An empty path returns the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		glog.Infof("wrote default config to %s", path)
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON
func Save(path string, cfg *AppConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating config directory %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing config %s", path)
}

// Validate checks the settings are usable
func (c *AppConfig) Validate() error {
	if c.GridSize <= 0 {
		return errors.Errorf("grid_size must be positive, got %d", c.GridSize)
	}
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return errors.Errorf("screen size must be positive, got %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	b := c.Board()
	if b.Width < 2 || b.Height < 2 {
		return errors.Errorf("board must be at least 2x2 cells, got %dx%d", b.Width, b.Height)
	}

	switch c.Frontend {
	case FrontendWindow, FrontendTerminal:
		if c.Speed <= 0 {
			return errors.Errorf("speed must be positive for the %s frontend, got %d", c.Frontend, c.Speed)
		}
	case FrontendHeadless:
		if !c.Autoplay {
			return errors.New("headless frontend needs autoplay")
		}
	default:
		return errors.Errorf("unknown frontend %q", c.Frontend)
	}

	if c.CaptureDir != "" && c.CaptureEvery < 0 {
		return errors.Errorf("capture_every must not be negative, got %d", c.CaptureEvery)
	}
	if c.MaxTicks < 0 {
		return errors.Errorf("max_ticks must not be negative, got %d", c.MaxTicks)
	}
	return nil
}

// Board returns the cell grid described by the pixel settings
func (c *AppConfig) Board() types.Board {
	return types.NewBoard(c.ScreenWidth, c.ScreenHeight, c.GridSize)
}

// Watch calls onChange with the reloaded settings whenever the file at path
// is written. It blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*AppConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating config watcher")
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(abs))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				glog.Warningf("config reload: %v", err)
				continue
			}
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			glog.Warningf("config watcher: %v", err)
		}
	}
}
