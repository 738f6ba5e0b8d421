package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[log]
level = "debug"

[window]
width = 800
height = 600
max_width = 1920
max_height = 1080

[session]
poll_interval = "250ms"
ready_timeout = "30s"

[loopback]
latency = 3
swap_planes = true
convention = "flipz"
`

const sampleYAML = `
log:
  level: warn
  json: true
camera:
  fov: 60
  near: 0.5
  far: 200
loopback:
  workers: 4
  warm_up: 2s
  passthrough: true
`

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{"viewer.toml", FormatTOML, false},
		{"viewer.YAML", FormatYAML, false},
		{"dir/viewer.yml", FormatYAML, false},
		{"viewer.json", "", true},
		{"viewer", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecode_TOMLOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sampleTOML), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "oxy remote", cfg.Window.Title)
	assert.Equal(t, 320, cfg.Window.MinWidth)
	assert.Equal(t, 1920, cfg.Window.MaxWidth)
	assert.Equal(t, 1080, cfg.Window.MaxHeight)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.PollInterval.Std())
	assert.Equal(t, 30*time.Second, cfg.Session.ReadyTimeout.Std())
	assert.Equal(t, time.Second, cfg.Session.StatusInterval.Std())
	assert.Equal(t, 3, cfg.Loopback.Latency)
	assert.True(t, cfg.Loopback.SwapPlanes)
	assert.Equal(t, "flipz", cfg.Loopback.Convention)
	assert.Equal(t, 2, cfg.Loopback.Workers)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDecode_YAMLOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, float32(60), cfg.Camera.Fov)
	assert.Equal(t, float32(0.5), cfg.Camera.Near)
	assert.Equal(t, 4, cfg.Loopback.Workers)
	assert.Equal(t, 2*time.Second, cfg.Loopback.WarmUp.Std())
	assert.True(t, cfg.Loopback.Passthrough)
	assert.Equal(t, 1280, cfg.Window.Width)
}

func TestDecode_EmptyYAMLIsDefault(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[window]\ncolour = 3\n"), FormatTOML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("window:\n  colour: 3\n"), FormatYAML)
	assert.Error(t, err)
}

func TestDecode_InvalidDuration(t *testing.T) {
	_, err := Decode(strings.NewReader("[session]\npoll_interval = \"soon\"\n"), FormatTOML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("session:\n  poll_interval: [1]\n"), FormatYAML)
	assert.Error(t, err)
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Window.Width = 0
	cfg.Renderer.PresentMode = "triple"
	cfg.Camera.Near, cfg.Camera.Far = 10, 1
	cfg.Loopback.Convention = "left-handed"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"log", "window", "present_mode", "clip planes", "convention"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestValidate_WindowLimits(t *testing.T) {
	tests := []struct {
		name     string
		min, max [2]int
		wantErr  string
	}{
		{"open maximum", [2]int{320, 200}, [2]int{0, 0}, ""},
		{"bounded", [2]int{320, 200}, [2]int{1920, 1080}, ""},
		{"negative", [2]int{-1, 200}, [2]int{0, 0}, "must not be negative"},
		{"max below min", [2]int{640, 480}, [2]int{1920, 240}, "below min size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Window.MinWidth, cfg.Window.MinHeight = tt.min[0], tt.min[1]
			cfg.Window.MaxWidth, cfg.Window.MaxHeight = tt.max[0], tt.max[1]
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEncode_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Loopback.Lease = Duration(90 * time.Second)
	cfg.Renderer.ClearColor = [4]float64{0.25, 0.5, 0.75, 1}

	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, cfg.Encode(&buf, format))
			assert.Contains(t, buf.String(), "1m30s")

			decoded, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, cfg, decoded)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(filepath.Join(dir, "viewer.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
