package vkbase

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the window and renderer settings shared by every example.
// Values omitted from the file keep their defaults.
type Config struct {
	Title          string  `yaml:"title"`
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	VSync          bool    `yaml:"vsync"`
	Validation     bool    `yaml:"validation"`
	PreferFPS      float32 `yaml:"prefer_fps"`
	FramesInFlight int     `yaml:"frames_in_flight"`
	ShaderDir      string  `yaml:"shader_dir"`
	AssetDir       string  `yaml:"asset_dir"`
	HotReload      bool    `yaml:"hot_reload"`
	LogLevel       string  `yaml:"log_level"`
}

// DefaultConfig returns the settings the examples run with when no config
// file is present.
func DefaultConfig() Config {
	return Config{
		Title:          "vkbase",
		Width:          1280,
		Height:         720,
		VSync:          true,
		Validation:     false,
		PreferFPS:      60.0,
		FramesInFlight: 3,
		ShaderDir:      "shaders",
		AssetDir:       "assets",
		HotReload:      false,
		LogLevel:       "info",
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error; a malformed or invalid one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the swapchain or window cannot work with.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FramesInFlight < 1 || c.FramesInFlight > 8 {
		return fmt.Errorf("frames_in_flight must be within [1,8], got %d", c.FramesInFlight)
	}
	if c.PreferFPS < 0 {
		return fmt.Errorf("prefer_fps must not be negative, got %f", c.PreferFPS)
	}
	return nil
}
