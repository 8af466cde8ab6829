package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game    GameConfig    `toml:"game"`
	World   WorldConfig   `toml:"world"`
	Content ContentConfig `toml:"content"`
	Render  RenderConfig  `toml:"render"`
	Logging LoggingConfig `toml:"logging"`
	Profile ProfileConfig `toml:"profile"`
}

type GameConfig struct {
	Title     string        `toml:"title"`
	TickRate  time.Duration `toml:"tick_rate"`
	StartRoom [2]int        `toml:"start_room"`
	Frames    int           `toml:"frames"` // stop after this many frames, 0 = run until quit
	Seed      uint32        `toml:"seed"`   // tile variant seed
}

type WorldConfig struct {
	RecycleEntities bool `toml:"recycle_entities"`
}

type ContentConfig struct {
	Sprites  string `toml:"sprites"`
	Tilesets string `toml:"tilesets"`
	Prefabs  string `toml:"prefabs"`
	Rooms    string `toml:"rooms"`
	Scripts  string `toml:"scripts"`
}

type RenderConfig struct {
	Backend        string `toml:"backend"` // "term" or "headless"
	Scale          int    `toml:"scale"`   // pixels per terminal cell
	Background     string `toml:"background"`
	DebugColliders bool   `toml:"debug_colliders"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // the terminal backend owns stdout, so it logs here
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu", "mem", "trace"
	Path string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Game.TickRate <= 0 {
		return fmt.Errorf("game.tick_rate must be positive, got %s", c.Game.TickRate)
	}
	switch c.Render.Backend {
	case "term", "headless":
	default:
		return fmt.Errorf("render.backend %q: want term or headless", c.Render.Backend)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive, got %d", c.Render.Scale)
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem", "trace":
	default:
		return fmt.Errorf("profile.mode %q: want cpu, mem or trace", c.Profile.Mode)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			Title:    "SWORD II: ADVENTURE OF FROG",
			TickRate: time.Second / 60,
			Seed:     1,
		},
		Content: ContentConfig{
			Sprites:  "content/sprites.yaml",
			Tilesets: "content/tilesets.yaml",
			Prefabs:  "content/prefabs.yaml",
			Rooms:    "content/rooms.yaml",
			Scripts:  "scripts",
		},
		Render: RenderConfig{
			Backend:    "term",
			Scale:      4,
			Background: "#150e22",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "platformer.log",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}
