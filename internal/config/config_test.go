package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 768, cfg.Breakpoints.Mobile)
	assert.Equal(t, 300*time.Millisecond, cfg.Animation.Duration.Duration())
	assert.Equal(t, 3000, cfg.Toasts.DefaultDuration.Milliseconds())
	assert.Equal(t, 10, cfg.Toasts.Gap)
	assert.Equal(t, 20, cfg.Container.Top)
	assert.Equal(t, 20, cfg.Container.Right)
	assert.Equal(t, DefaultSuccessIcon, cfg.Icons.Path("success"))
	assert.Equal(t, DefaultErrorIcon, cfg.Icons.Path("error"))
	assert.Equal(t, DefaultLoadingIcon, cfg.Icons.Path("loading"))
	assert.Empty(t, cfg.Icons.Path("none"))
	require.NoError(t, cfg.Validate())
}

func TestPartial_ApplyKeepsUnsetFields(t *testing.T) {
	p := Partial{
		Toasts: &ToastsPartial{DefaultDuration: Ptr(Duration(5 * time.Second))},
		Icons:  &IconPartial{Success: Ptr("/ok.svg")},
	}

	cfg := p.Apply(*DefaultConfig())

	assert.Equal(t, 5000, cfg.Toasts.DefaultDuration.Milliseconds())
	assert.Equal(t, DefaultGap, cfg.Toasts.Gap, "sibling field keeps default")
	assert.Equal(t, "/ok.svg", cfg.Icons.Success)
	assert.Equal(t, DefaultErrorIcon, cfg.Icons.Error)
	assert.Equal(t, DefaultMobileBreakpoint, cfg.Breakpoints.Mobile)
}

func TestPartial_Merge(t *testing.T) {
	base := Partial{Toasts: &ToastsPartial{Gap: Ptr(4)}}
	over := Partial{Toasts: &ToastsPartial{DefaultDuration: Ptr(Duration(time.Second))}}

	merged := base.Merge(over)

	require.NotNil(t, merged.Toasts)
	assert.Equal(t, 4, *merged.Toasts.Gap)
	assert.Equal(t, time.Second, merged.Toasts.DefaultDuration.Duration())
	assert.Nil(t, base.Toasts.DefaultDuration, "merge does not mutate the receiver")
	assert.True(t, Partial{}.IsZero())
	assert.False(t, merged.IsZero())
}

func TestLoadPartial_MissingFile(t *testing.T) {
	p, err := LoadPartial("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.True(t, p.IsZero())
}

func TestLoadPartial_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[breakpoints]
mobile = 600

[animation]
duration = "250ms"

[toasts]
default_duration = 5000
gap = 4

[container]
top = 8

[icons]
error = "/err.svg"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := LoadPartial(path)
	require.NoError(t, err)

	cfg := p.Apply(*DefaultConfig())
	assert.Equal(t, 600, cfg.Breakpoints.Mobile)
	assert.Equal(t, 250*time.Millisecond, cfg.Animation.Duration.Duration())
	assert.Equal(t, 5*time.Second, cfg.Toasts.DefaultDuration.Duration())
	assert.Equal(t, 4, cfg.Toasts.Gap)
	assert.Equal(t, 8, cfg.Container.Top)
	assert.Equal(t, DefaultContainerRight, cfg.Container.Right)
	assert.Equal(t, "/err.svg", cfg.Icons.Error)
	assert.Nil(t, p.Intake)
}

func TestLoadPartial_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadPartial(path)
	assert.Error(t, err)
}

func TestDuration_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"milliseconds", "1500", 1500 * time.Millisecond},
		{"seconds", "5s", 5 * time.Second},
		{"compound", "1m30s", 90 * time.Second},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, d.UnmarshalText([]byte(tt.input)))
			assert.Equal(t, tt.want, d.Duration())
		})
	}

	var d Duration
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 5000, "b": "2s"}`), &v))
	assert.Equal(t, 5*time.Second, v.A.Duration())
	assert.Equal(t, 2*time.Second, v.B.Duration())
}

func TestDuration_OutOfRange(t *testing.T) {
	for _, input := range []string{`1e300`, `-1e300`, `"9223372036854775807"`} {
		t.Run(input, func(t *testing.T) {
			var d Duration
			assert.Error(t, json.Unmarshal([]byte(input), &d))
		})
	}

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`9223372036854`), &d))
	assert.Positive(t, d.Duration())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero breakpoint", func(c *Config) { c.Breakpoints.Mobile = 0 }},
		{"negative gap", func(c *Config) { c.Toasts.Gap = -1 }},
		{"negative duration", func(c *Config) { c.Toasts.DefaultDuration = Duration(-time.Second) }},
		{"negative animation", func(c *Config) { c.Animation.Duration = Duration(-time.Millisecond) }},
		{"negative top", func(c *Config) { c.Container.Top = -5 }},
		{"negative rate", func(c *Config) { c.Intake.Rate = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Marshal(t *testing.T) {
	cfg := DefaultConfig()

	data, err := cfg.Marshal("toml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_duration")
	assert.Contains(t, string(data), "3s")

	data, err = cfg.Marshal("yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_duration: 3s")

	_, err = cfg.Marshal("xml")
	assert.Error(t, err)
}

func TestStore_DefaultsBeforeInit(t *testing.T) {
	s := NewStore(nil)

	assert.False(t, s.Initialized())
	assert.Equal(t, *DefaultConfig(), s.Get())
}

func TestStore_InitOnce(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := NewStore(logger)

	var notified []Config
	s.OnInit(func(c Config) { notified = append(notified, c) })

	err := s.Init(Partial{Toasts: &ToastsPartial{DefaultDuration: Ptr(Duration(5 * time.Second))}})
	require.NoError(t, err)
	assert.True(t, s.Initialized())
	assert.Equal(t, 5*time.Second, s.Get().Toasts.DefaultDuration.Duration())
	require.Len(t, notified, 1)

	err = s.Init(Partial{Toasts: &ToastsPartial{DefaultDuration: Ptr(Duration(time.Second))}})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, 5*time.Second, s.Get().Toasts.DefaultDuration.Duration(), "second init changes nothing")
	assert.Len(t, notified, 1)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "already initialized")
}

func TestStore_InvalidInitDoesNotSeal(t *testing.T) {
	s := NewStore(nil)

	err := s.Init(Partial{Toasts: &ToastsPartial{Gap: Ptr(-3)}})
	require.Error(t, err)
	assert.False(t, s.Initialized())
	assert.Equal(t, DefaultGap, s.Get().Toasts.Gap)

	require.NoError(t, s.Init(Partial{Toasts: &ToastsPartial{Gap: Ptr(3)}}))
	assert.Equal(t, 3, s.Get().Toasts.Gap)
}
