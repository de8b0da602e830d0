// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/midgard-vr/internal/controls"
	"github.com/Faultbox/midgard-vr/internal/sensor"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Controls ControlsConfig `yaml:"controls"`
	Devices  DevicesConfig  `yaml:"devices"`
	Sensor   SensorConfig   `yaml:"sensor"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"` // 0 is uncapped
}

// ControlsConfig holds input group toggles and integration tuning.
type ControlsConfig struct {
	controls.Groups `yaml:",inline"`

	TimeScale   float32       `yaml:"time_scale"`    // Rate units per millisecond
	MaxFrameGap time.Duration `yaml:"max_frame_gap"` // 0 disables clamping
}

// DevicesConfig holds gamepad discovery settings.
type DevicesConfig struct {
	Strategy     string        `yaml:"strategy"` // auto, events or polling
	PollInterval time.Duration `yaml:"poll_interval"`
}

// SensorConfig holds the orientation stream settings.
type SensorConfig struct {
	Listen     string        `yaml:"listen"` // UDP address; empty disables the stream
	Role       string        `yaml:"role"`   // hmd or phone
	StaleAfter time.Duration `yaml:"stale_after"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Controls: ControlsConfig{
			Groups:      controls.AllGroups(),
			TimeScale:   controls.DefaultTimeScale,
			MaxFrameGap: controls.DefaultMaxFrameGap,
		},
		Devices: DevicesConfig{
			Strategy:     string(controls.StrategyAuto),
			PollInterval: controls.DefaultPollInterval,
		},
		Sensor: SensorConfig{
			Listen:     "",
			Role:       string(sensor.RoleHMD),
			StaleAfter: sensor.DefaultStaleAfter,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be repaired silently.
func (c *Config) Validate() error {
	if _, err := controls.ParseStrategy(c.Devices.Strategy); err != nil {
		return fmt.Errorf("devices: %w", err)
	}
	switch sensor.Role(c.Sensor.Role) {
	case sensor.RoleHMD, sensor.RolePhone:
	default:
		return fmt.Errorf("sensor: unknown role %q", c.Sensor.Role)
	}
	if c.Graphics.FPSLimit < 0 {
		return fmt.Errorf("graphics: negative fps_limit %d", c.Graphics.FPSLimit)
	}
	if c.Controls.TimeScale < 0 {
		return fmt.Errorf("controls: negative time_scale %v", c.Controls.TimeScale)
	}
	if c.Controls.MaxFrameGap < 0 {
		return fmt.Errorf("controls: negative max_frame_gap %v", c.Controls.MaxFrameGap)
	}
	return nil
}

// ControlSettings converts the config into control system settings.
// Call Validate first; an invalid strategy falls back to auto.
func (c *Config) ControlSettings() controls.Settings {
	strategy, err := controls.ParseStrategy(c.Devices.Strategy)
	if err != nil {
		strategy = controls.StrategyAuto
	}
	interval := c.Devices.PollInterval
	if interval <= 0 {
		interval = controls.DefaultPollInterval
	}
	return controls.Settings{
		Groups:       c.Controls.Groups,
		TimeScale:    c.Controls.TimeScale,
		MaxFrameGap:  c.Controls.MaxFrameGap,
		Strategy:     strategy,
		PollInterval: interval,
	}
}
