package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Awareness  AwarenessConfig  `toml:"awareness"`
	Data       DataConfig       `toml:"data"`
	Simulation SimulationConfig `toml:"simulation"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	ID        int    `toml:"id"`
	StartTime int64  // set at boot, not from config
}

type AwarenessConfig struct {
	AwareRange   float64 `toml:"aware_range"`   // broad index query radius
	DefaultRange float64 `toml:"default_range"` // cut-off for objects with load range 0
	NodeCapacity int     `toml:"node_capacity"` // items per quadtree leaf before splitting
	MaxDepth     int     `toml:"max_depth"`     // deepest quadtree split; deeper leaves overflow
	WorldExtent  float64 `toml:"world_extent"`  // terrains span [-extent, extent] on X and Z
}

type DataConfig struct {
	TerrainList string `toml:"terrain_list"`
}

type SimulationConfig struct {
	Enabled        bool          `toml:"enabled"`
	Drifters       int           `toml:"drifters"`        // per terrain
	PlayerFraction float64       `toml:"player_fraction"` // 0.0-1.0
	SpawnSpread    float64       `toml:"spawn_spread"`    // half-width of the spawn square
	Speed          float64       `toml:"speed"`           // units per tick
	Workers        int           `toml:"workers"`
	TickRate       time.Duration `toml:"tick_rate"`
	Duration       time.Duration `toml:"duration"` // 0 = run until signalled
	ReportEvery    int           `toml:"report_every"`
	Seed           int64         `toml:"seed"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
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
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration, used when no file is present.
func Default() *Config {
	cfg := defaults()
	cfg.Server.StartTime = time.Now().Unix()
	return cfg
}

func (c *Config) validate() error {
	a := c.Awareness
	switch {
	case a.AwareRange <= 0:
		return fmt.Errorf("awareness.aware_range must be positive, got %v", a.AwareRange)
	case a.DefaultRange < 0:
		return fmt.Errorf("awareness.default_range must not be negative, got %v", a.DefaultRange)
	case a.NodeCapacity <= 0:
		return fmt.Errorf("awareness.node_capacity must be positive, got %d", a.NodeCapacity)
	case a.MaxDepth < 0:
		return fmt.Errorf("awareness.max_depth must not be negative, got %d", a.MaxDepth)
	case a.WorldExtent <= 0:
		return fmt.Errorf("awareness.world_extent must be positive, got %v", a.WorldExtent)
	}
	if f := c.Simulation.PlayerFraction; f < 0 || f > 1 {
		return fmt.Errorf("simulation.player_fraction must be within [0, 1], got %v", f)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "awarenessd",
			ID:   1,
		},
		Awareness: AwarenessConfig{
			AwareRange:   1024,
			DefaultRange: math.Sqrt(200),
			NodeCapacity: 16,
			MaxDepth:     12,
			WorldExtent:  8192,
		},
		Data: DataConfig{
			TerrainList: "data/yaml/terrain_list.yaml",
		},
		Simulation: SimulationConfig{
			Enabled:        true,
			Drifters:       2000,
			PlayerFraction: 0.1,
			SpawnSpread:    2048,
			Speed:          4,
			Workers:        8,
			TickRate:       200 * time.Millisecond,
			Duration:       30 * time.Second,
			ReportEvery:    25,
			Seed:           1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
