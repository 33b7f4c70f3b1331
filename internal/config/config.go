// Package config handles toast configuration defaults, partial overrides and
// configuration file loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultMobileBreakpoint  = 768
	DefaultAnimationDuration = 300 * time.Millisecond
	DefaultToastDuration     = 3000 * time.Millisecond
	DefaultGap               = 10
	DefaultContainerTop      = 20
	DefaultContainerRight    = 20
	DefaultIntakeRate        = 20.0
	DefaultIntakeBurst       = 10

	DefaultIconDir     = "/assets/img/bootstrapped/toast/"
	DefaultLoadingIcon = DefaultIconDir + "loading.svg"
	DefaultSuccessIcon = DefaultIconDir + "greenSuccess.svg"
	DefaultErrorIcon   = DefaultIconDir + "redError.svg"
)

// Config represents the toastkit configuration.
type Config struct {
	Breakpoints BreakpointConfig `toml:"breakpoints" yaml:"breakpoints" json:"breakpoints"`
	Animation   AnimationConfig  `toml:"animation" yaml:"animation" json:"animation"`
	Toasts      ToastsConfig     `toml:"toasts" yaml:"toasts" json:"toasts"`
	Container   ContainerConfig  `toml:"container" yaml:"container" json:"container"`
	Icons       IconConfig       `toml:"icons" yaml:"icons" json:"icons"`
	Intake      IntakeConfig     `toml:"intake" yaml:"intake" json:"intake"`
}

// BreakpointConfig holds viewport breakpoints in pixels.
type BreakpointConfig struct {
	Mobile int `toml:"mobile" yaml:"mobile" json:"mobile"` // Below this width toasts are centred
}

// AnimationConfig holds enter/exit animation timing.
type AnimationConfig struct {
	Duration Duration `toml:"duration" yaml:"duration" json:"duration"`
}

// ToastsConfig holds toast display settings.
type ToastsConfig struct {
	DefaultDuration Duration `toml:"default_duration" yaml:"default_duration" json:"default_duration"`
	Gap             int      `toml:"gap" yaml:"gap" json:"gap"` // Pixels between stacked toasts
}

// ContainerConfig anchors the toast container to the top-right corner.
type ContainerConfig struct {
	Top   int `toml:"top" yaml:"top" json:"top"`
	Right int `toml:"right" yaml:"right" json:"right"`
}

// IconConfig maps icon kinds to image paths.
type IconConfig struct {
	None    string `toml:"none" yaml:"none" json:"none"`
	Loading string `toml:"loading" yaml:"loading" json:"loading"`
	Success string `toml:"success" yaml:"success" json:"success"`
	Error   string `toml:"error" yaml:"error" json:"error"`
}

// IntakeConfig throttles requests arriving from stdin or a spool file.
type IntakeConfig struct {
	Rate  float64 `toml:"rate" yaml:"rate" json:"rate"` // Requests per second, 0 = unlimited
	Burst int     `toml:"burst" yaml:"burst" json:"burst"`
}

// Path returns the icon path for the named kind ("loading", "success",
// "error"). Anything else maps to the none icon.
func (c IconConfig) Path(kind string) string {
	switch kind {
	case "loading":
		return c.Loading
	case "success":
		return c.Success
	case "error":
		return c.Error
	default:
		return c.None
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Breakpoints: BreakpointConfig{
			Mobile: DefaultMobileBreakpoint,
		},
		Animation: AnimationConfig{
			Duration: Duration(DefaultAnimationDuration),
		},
		Toasts: ToastsConfig{
			DefaultDuration: Duration(DefaultToastDuration),
			Gap:             DefaultGap,
		},
		Container: ContainerConfig{
			Top:   DefaultContainerTop,
			Right: DefaultContainerRight,
		},
		Icons: IconConfig{
			None:    "",
			Loading: DefaultLoadingIcon,
			Success: DefaultSuccessIcon,
			Error:   DefaultErrorIcon,
		},
		Intake: IntakeConfig{
			Rate:  DefaultIntakeRate,
			Burst: DefaultIntakeBurst,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Breakpoints.Mobile <= 0 {
		return fmt.Errorf("breakpoints.mobile must be positive, got %d", c.Breakpoints.Mobile)
	}
	if c.Animation.Duration < 0 {
		return fmt.Errorf("animation.duration must not be negative, got %s", c.Animation.Duration.Duration())
	}
	if c.Toasts.DefaultDuration < 0 {
		return fmt.Errorf("toasts.default_duration must not be negative, got %s", c.Toasts.DefaultDuration.Duration())
	}
	if c.Toasts.Gap < 0 {
		return fmt.Errorf("toasts.gap must not be negative, got %d", c.Toasts.Gap)
	}
	if c.Container.Top < 0 || c.Container.Right < 0 {
		return fmt.Errorf("container offsets must not be negative, got top=%d right=%d", c.Container.Top, c.Container.Right)
	}
	if c.Intake.Rate < 0 || c.Intake.Burst < 0 {
		return fmt.Errorf("intake rate and burst must not be negative, got rate=%g burst=%d", c.Intake.Rate, c.Intake.Burst)
	}
	return nil
}

// Marshal encodes the configuration as "toml" or "yaml".
func (c *Config) Marshal(format string) ([]byte, error) {
	switch format {
	case "", "toml":
		return toml.Marshal(c)
	case "yaml", "yml":
		return yaml.Marshal(c)
	default:
		return nil, fmt.Errorf("unknown config format %q, must be toml or yaml", format)
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastkit", "config.toml")
}

// LoadPartial loads a partial configuration from the specified path.
// If path is empty, uses the default config path.
// Returns an empty partial if the file doesn't exist.
func LoadPartial(path string) (Partial, error) {
	if path == "" {
		path = ConfigPath()
	}

	var p Partial
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &p); err != nil {
		return Partial{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return p, nil
}
