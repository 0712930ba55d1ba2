// Package config handles lyttool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all tool settings.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Playback PlaybackConfig `yaml:"playback"`
	View     ViewConfig     `yaml:"view"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig holds resource locations. When Archive is set, Layout and
// Animations are member paths inside it; otherwise they are file paths.
type DataConfig struct {
	Archive    string   `yaml:"archive"`
	Layout     string   `yaml:"layout"`
	Animations []string `yaml:"animations"`
}

// PlaybackConfig controls how the play command drives animations.
type PlaybackConfig struct {
	FrameRate float32 `yaml:"frame_rate"` // frames per second, for reported times
	Frames    int     `yaml:"frames"`     // updates to simulate
	Step      float32 `yaml:"step"`       // frames advanced per update
}

// ViewConfig describes the orthographic view draw lists are computed in.
type ViewConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			FrameRate: 60,
			Frames:    60,
			Step:      1,
		},
		View: ViewConfig{
			Width:  608,
			Height: 456,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Playback.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("playback.frame_rate must be positive, got %v", c.Playback.FrameRate))
	}
	if c.Playback.Frames < 0 {
		errs = append(errs, fmt.Errorf("playback.frames must not be negative, got %d", c.Playback.Frames))
	}
	if c.Playback.Step <= 0 {
		errs = append(errs, fmt.Errorf("playback.step must be positive, got %v", c.Playback.Step))
	}
	if c.View.Width <= 0 || c.View.Height <= 0 {
		errs = append(errs, fmt.Errorf("view size must be positive, got %vx%v", c.View.Width, c.View.Height))
	}
	return errors.Join(errs...)
}
