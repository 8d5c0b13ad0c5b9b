// Package config loads the game configuration from a YAML file.
// Intervals and the price table are read once at startup and treated as
// read-only afterwards; when no file exists a default one is written so
// operators have something to edit.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full game configuration.
type Config struct {
	Game   GameConfig     `yaml:"game"`
	Prices map[string]int `yaml:"prices"`
}

// GameConfig holds tick intervals (seconds) and core game constants.
type GameConfig struct {
	QuizInterval   int `yaml:"quiz_interval"`
	SalaryInterval int `yaml:"salary_interval"`
	DecayInterval  int `yaml:"decay_interval"`
	EventInterval  int `yaml:"event_interval"`
	IncomeInterval int `yaml:"income_interval"`

	StartBalance int `yaml:"start_balance"`
	MaxHealth    int `yaml:"max_health"`
	MaxEnergy    int `yaml:"max_energy"`
}

// Default returns the built-in configuration, matching the documented
// reference intervals (quiz 5m, salary 1h, decay 30m, events 40m, income 15m).
func Default() *Config {
	return &Config{
		Game: GameConfig{
			QuizInterval:   300,
			SalaryInterval: 3600,
			DecayInterval:  1800,
			EventInterval:  2400,
			IncomeInterval: 900,
			StartBalance:   1000,
			MaxHealth:      100,
			MaxEnergy:      100,
		},
		Prices: map[string]int{
			"food":           50,
			"medicine":       100,
			"entertainment":  80,
			"pet_food":       40,
			"gift":           300,
			"server_upgrade": 500,
			"partner":        1000,
			"vehicle":        5000,
			"residence":      20000,
			"venture":        10000,
		},
	}
}

// Load reads the configuration at path. A missing file is not an error: the
// defaults are written there and returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if werr := cfg.write(path); werr != nil {
			slog.Warn("could not write default config", "path", path, "error", werr)
		} else {
			slog.Info("wrote default config", "path", path)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Start from defaults so partial files stay usable.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Price returns the configured price for an item, or 0 when unknown.
func (c *Config) Price(item string) int {
	return c.Prices[item]
}

// Interval durations for the scheduler.

func (c *Config) QuizEvery() time.Duration   { return time.Duration(c.Game.QuizInterval) * time.Second }
func (c *Config) SalaryEvery() time.Duration { return time.Duration(c.Game.SalaryInterval) * time.Second }
func (c *Config) DecayEvery() time.Duration  { return time.Duration(c.Game.DecayInterval) * time.Second }
func (c *Config) EventEvery() time.Duration  { return time.Duration(c.Game.EventInterval) * time.Second }
func (c *Config) IncomeEvery() time.Duration { return time.Duration(c.Game.IncomeInterval) * time.Second }
