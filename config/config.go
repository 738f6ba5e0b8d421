// Package config loads the remote viewer's file configuration. TOML and YAML are supported,
// selected by file extension; every field has a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Format: the encoding
//   - error: ErrUnsupportedFormat for unknown extensions
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Config is the full viewer configuration.
type Config struct {
	Log      LogConfig      `toml:"log" yaml:"log"`
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Session  SessionConfig  `toml:"session" yaml:"session"`
	Loopback LoopbackConfig `toml:"loopback" yaml:"loopback"`
}

type LogConfig struct {
	// Level is a slog level name: debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// JSON selects the JSON handler instead of text.
	JSON bool `toml:"json" yaml:"json"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	// Resize limits in pixels; 0 leaves a bound open.
	MinWidth  int `toml:"min_width" yaml:"min_width"`
	MinHeight int `toml:"min_height" yaml:"min_height"`
	MaxWidth  int `toml:"max_width" yaml:"max_width"`
	MaxHeight int `toml:"max_height" yaml:"max_height"`
}

type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode   string     `toml:"present_mode" yaml:"present_mode"`
	ForceSoftware bool       `toml:"force_software" yaml:"force_software"`
	ClearColor    [4]float64 `toml:"clear_color" yaml:"clear_color"`
}

type EngineConfig struct {
	TickRate   float64 `toml:"tick_rate" yaml:"tick_rate"`
	FrameLimit float64 `toml:"frame_limit" yaml:"frame_limit"`
	Profiling  bool    `toml:"profiling" yaml:"profiling"`
}

type CameraConfig struct {
	// Fov is the vertical field of view in degrees.
	Fov    float32 `toml:"fov" yaml:"fov"`
	Near   float32 `toml:"near" yaml:"near"`
	Far    float32 `toml:"far" yaml:"far"`
	Radius float32 `toml:"radius" yaml:"radius"`
}

type SessionConfig struct {
	PollInterval    Duration `toml:"poll_interval" yaml:"poll_interval"`
	ReadyTimeout    Duration `toml:"ready_timeout" yaml:"ready_timeout"`
	StatusInterval  Duration `toml:"status_interval" yaml:"status_interval"`
	MaxCopyFailures int      `toml:"max_copy_failures" yaml:"max_copy_failures"`
}

type LoopbackConfig struct {
	Workers          int      `toml:"workers" yaml:"workers"`
	QueueSize        int      `toml:"queue_size" yaml:"queue_size"`
	Latency          int      `toml:"latency" yaml:"latency"`
	WarmUp           Duration `toml:"warm_up" yaml:"warm_up"`
	Lease            Duration `toml:"lease" yaml:"lease"`
	SwapPlanes       bool     `toml:"swap_planes" yaml:"swap_planes"`
	CopyFailureEvery int      `toml:"copy_failure_every" yaml:"copy_failure_every"`
	// Convention is "identity" or "flipz".
	Convention string `toml:"convention" yaml:"convention"`
	RowMajor   bool   `toml:"row_major" yaml:"row_major"`
	// Passthrough binds the session to a coordinate system instead of submitting poses.
	Passthrough bool `toml:"passthrough" yaml:"passthrough"`
}

// Default returns the configuration used for any field a file leaves out.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Window: WindowConfig{
			Title:     "oxy remote",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 200,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			ClearColor:  [4]float64{0.1, 0.1, 0.1, 1},
		},
		Engine: EngineConfig{TickRate: 60},
		Camera: CameraConfig{
			Fov:    45,
			Near:   0.1,
			Far:    1000,
			Radius: 10,
		},
		Session: SessionConfig{
			PollInterval:    Duration(time.Second),
			ReadyTimeout:    Duration(2 * time.Minute),
			StatusInterval:  Duration(time.Second),
			MaxCopyFailures: 30,
		},
		Loopback: LoopbackConfig{
			Workers:    2,
			QueueSize:  64,
			Latency:    1,
			Convention: "identity",
		},
	}
}

// Load reads a config file on top of Default and validates it.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the loaded configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a config in the given format on top of Default and validates it.
// Unknown keys are rejected.
//
// Parameters:
//   - r: the encoded config
//   - format: the encoding
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode or validation error
func Decode(r io.Reader, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes the configuration in the given format.
//
// Parameters:
//   - w: the destination
//   - format: the encoding
//
// Returns:
//   - error: an encode error or ErrUnsupportedFormat
func (c Config) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (w WindowConfig) validateLimits() error {
	if w.MinWidth < 0 || w.MinHeight < 0 || w.MaxWidth < 0 || w.MaxHeight < 0 {
		return errors.New("window: size limits must not be negative")
	}
	if (w.MaxWidth > 0 && w.MaxWidth < w.MinWidth) || (w.MaxHeight > 0 && w.MaxHeight < w.MinHeight) {
		return fmt.Errorf("window: max size %dx%d is below min size %dx%d", w.MaxWidth, w.MaxHeight, w.MinWidth, w.MinHeight)
	}
	return nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if err := c.Window.validateLimits(); err != nil {
		errs = append(errs, err)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		errs = append(errs, fmt.Errorf("renderer: present_mode %q must be vsync or uncapped", c.Renderer.PresentMode))
	}
	if c.Engine.TickRate < 0 || c.Engine.FrameLimit < 0 {
		errs = append(errs, errors.New("engine: tick_rate and frame_limit must not be negative"))
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		errs = append(errs, fmt.Errorf("camera: fov %v must be in (0, 180)", c.Camera.Fov))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera: clip planes near=%v far=%v need 0 < near < far", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.Radius <= 0 {
		errs = append(errs, fmt.Errorf("camera: radius %v must be positive", c.Camera.Radius))
	}
	if c.Session.PollInterval <= 0 || c.Session.ReadyTimeout <= 0 {
		errs = append(errs, errors.New("session: poll_interval and ready_timeout must be positive"))
	}
	if c.Session.StatusInterval < 0 || c.Session.MaxCopyFailures < 0 {
		errs = append(errs, errors.New("session: status_interval and max_copy_failures must not be negative"))
	}
	if c.Loopback.Workers <= 0 || c.Loopback.QueueSize <= 0 || c.Loopback.Latency <= 0 {
		errs = append(errs, errors.New("loopback: workers, queue_size and latency must be positive"))
	}
	if c.Loopback.CopyFailureEvery < 0 {
		errs = append(errs, errors.New("loopback: copy_failure_every must not be negative"))
	}
	switch c.Loopback.Convention {
	case "identity", "flipz":
	default:
		errs = append(errs, fmt.Errorf("loopback: convention %q must be identity or flipz", c.Loopback.Convention))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log: %w", err)
	}
	return level, nil
}
