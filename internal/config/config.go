// Package config loads go-hmdbridge settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default settings.
const (
	DefaultSupersampleRatio        = 1.0
	DefaultHiddenMeshVerticalScale = 1.0
	DefaultSessionPollInterval     = 20 * time.Millisecond
	DefaultSessionWaitTimeout      = 5 * time.Second
	DefaultInspectAddr             = ":8090"
	DefaultPoseStreamInterval      = 50 * time.Millisecond
)

// Config holds the tunables of the HMD layer and its tools.
type Config struct {
	// Rendering
	SupersampleRatio float64 `env:"HMD_SUPERSAMPLE_RATIO" envDefault:"1.0"`

	// Hidden-area mesh. HiddenMeshFix remaps the runtime's tangent-space
	// mask into UV space; HiddenMeshVerticalScale corrects its vertical
	// misalignment on some headsets.
	HiddenMeshFix           bool    `env:"HMD_HIDDEN_MESH_FIX" envDefault:"true"`
	HiddenMeshVerticalScale float64 `env:"HMD_HIDDEN_MESH_VERTICAL_SCALE" envDefault:"1.0"`

	// Session lifetime
	SessionPollInterval time.Duration `env:"HMD_SESSION_POLL_INTERVAL" envDefault:"20ms"`
	SessionWaitTimeout  time.Duration `env:"HMD_SESSION_WAIT_TIMEOUT" envDefault:"5s"`

	// Device profile override table (YAML), optional
	ProfilePath string `env:"HMD_PROFILE"`

	// Tools
	InspectAddr        string        `env:"HMD_INSPECT_ADDR" envDefault:":8090"`
	PoseStreamInterval time.Duration `env:"HMD_POSE_STREAM_INTERVAL" envDefault:"50ms"`
	SimulatorRate      time.Duration `env:"HMD_SIM_RATE" envDefault:"11ms"`
	SimulatorRestarts  time.Duration `env:"HMD_SIM_RESTART_EVERY" envDefault:"0s"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		SupersampleRatio:        DefaultSupersampleRatio,
		HiddenMeshFix:           true,
		HiddenMeshVerticalScale: DefaultHiddenMeshVerticalScale,
		SessionPollInterval:     DefaultSessionPollInterval,
		SessionWaitTimeout:      DefaultSessionWaitTimeout,
		InspectAddr:             DefaultInspectAddr,
		PoseStreamInterval:      DefaultPoseStreamInterval,
		SimulatorRate:           11 * time.Millisecond,
		LogLevel:                "info",
	}
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the HMD layer cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.SupersampleRatio <= 0 {
		errs = append(errs, fmt.Errorf("config: supersample ratio must be positive, got %v", c.SupersampleRatio))
	}
	if c.HiddenMeshVerticalScale <= 0 {
		errs = append(errs, fmt.Errorf("config: hidden mesh vertical scale must be positive, got %v", c.HiddenMeshVerticalScale))
	}
	if c.SessionPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: session poll interval must be positive, got %v", c.SessionPollInterval))
	}
	if c.SessionWaitTimeout < c.SessionPollInterval {
		errs = append(errs, fmt.Errorf("config: session wait timeout %v is shorter than the poll interval %v", c.SessionWaitTimeout, c.SessionPollInterval))
	}
	if c.PoseStreamInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: pose stream interval must be positive, got %v", c.PoseStreamInterval))
	}
	if c.SimulatorRate <= 0 {
		errs = append(errs, fmt.Errorf("config: simulator rate must be positive, got %v", c.SimulatorRate))
	}
	return errors.Join(errs...)
}
