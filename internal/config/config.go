package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Backend names accepted by the "backend" key.
const (
	BackendGStreamer = "gstreamer"
	BackendMpv       = "mpv"
)

type Config struct {
	Backend  string `koanf:"backend"`   // "gstreamer" (default) or "mpv"
	LogLevel string `koanf:"log_level"` // zerolog level name, default "info"

	Playback  PlaybackConfig  `koanf:"playback"`
	Mpv       MpvConfig       `koanf:"mpv"`
	GStreamer GStreamerConfig `koanf:"gstreamer"`
	UI        UIConfig        `koanf:"ui"`
	Artwork   ArtworkConfig   `koanf:"artwork"`
}

// PlaybackConfig holds engine and player-control settings.
type PlaybackConfig struct {
	PollIntervalMS  int    `koanf:"poll_interval_ms"`  // position poll while playing (default: 500)
	SeekStepSeconds int    `koanf:"seek_step_seconds"` // seek key step (default: 10)
	VolumeStep      int    `koanf:"volume_step"`       // volume key step in percent (default: 5)
	SubtitleFont    string `koanf:"subtitle_font"`     // font family for GStreamer subtitles (default: "Sans")
	SubtitleSize    int    `koanf:"subtitle_size"`     // base subtitle size in points (default: 18)
}

// MpvConfig holds the mpv backend settings.
type MpvConfig struct {
	Binary    string   `koanf:"binary"`     // default: "mpv"
	SocketDir string   `koanf:"socket_dir"` // IPC socket directory (default: $XDG_RUNTIME_DIR)
	ExtraArgs []string `koanf:"extra_args"` // appended to the mpv command line
}

// GStreamerConfig holds the playbin backend settings. Empty sinks let
// playbin pick automatically.
type GStreamerConfig struct {
	VideoSink string `koanf:"video_sink"`
	AudioSink string `koanf:"audio_sink"`
}

// UIConfig holds TUI layout and input settings.
type UIConfig struct {
	DebounceMS  int    `koanf:"debounce_ms"` // default: 250
	ItemWidth   int    `koanf:"item_width"`  // menu row width in cells (default: 32)
	ItemSpacing int    `koanf:"item_spacing"`
	ItemMargin  int    `koanf:"item_margin"`
	Icons       string `koanf:"icons"`  // "nerd", "unicode" (default), or "none"
	Notify      *bool  `koanf:"notify"` // desktop notification on playback errors (default: true)
}

// ArtworkConfig holds artwork fetch and cache settings.
type ArtworkConfig struct {
	CacheDir          string  `koanf:"cache_dir"`           // default: $XDG_CACHE_HOME/marquee/artwork
	MaxConcurrent     int     `koanf:"max_concurrent"`      // default: 4
	RequestsPerSecond float64 `koanf:"requests_per_second"` // default: 8
	MaxCacheMB        int     `koanf:"max_cache_mb"`        // default: 200
}

// Load reads the default config files (user config, then ./config.toml).
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles reads the given config files in order; later files win.
// Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load config %s", path)
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = BackendGStreamer
	}
	if cfg.Backend != BackendGStreamer && cfg.Backend != BackendMpv {
		return nil, errors.Errorf("unknown backend %q (want %q or %q)", cfg.Backend, BackendGStreamer, BackendMpv)
	}

	// Expand ~ in paths
	cfg.Mpv.Binary = expandPath(cfg.Mpv.Binary)
	cfg.Mpv.SocketDir = expandPath(cfg.Mpv.SocketDir)
	cfg.Artwork.CacheDir = expandPath(cfg.Artwork.CacheDir)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/marquee/config.toml
	if xdg.ConfigHome != "" {
		paths = append(paths, filepath.Join(xdg.ConfigHome, "marquee", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 500
	}
	if cfg.SeekStepSeconds <= 0 {
		cfg.SeekStepSeconds = 10
	}
	if cfg.VolumeStep <= 0 || cfg.VolumeStep > 100 {
		cfg.VolumeStep = 5
	}
	if cfg.SubtitleFont == "" {
		cfg.SubtitleFont = "Sans"
	}
	if cfg.SubtitleSize <= 0 {
		cfg.SubtitleSize = 18
	}

	return cfg
}

// PollInterval returns the position poll interval.
func (p PlaybackConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMS) * time.Millisecond
}

// SeekStep returns the seek key step.
func (p PlaybackConfig) SeekStep() time.Duration {
	return time.Duration(p.SeekStepSeconds) * time.Second
}

// GetMpvConfig returns the mpv configuration with defaults applied.
func (c *Config) GetMpvConfig() MpvConfig {
	cfg := c.Mpv

	if cfg.Binary == "" {
		cfg.Binary = "mpv"
	}
	if cfg.SocketDir == "" {
		cfg.SocketDir = xdg.RuntimeDir
	}
	if cfg.SocketDir == "" {
		cfg.SocketDir = os.TempDir()
	}

	return cfg
}

// GetUIConfig returns the UI configuration with defaults applied.
func (c *Config) GetUIConfig() UIConfig {
	cfg := c.UI

	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 250
	}
	if cfg.ItemWidth <= 0 {
		cfg.ItemWidth = 32
	}
	if cfg.ItemSpacing < 0 {
		cfg.ItemSpacing = 0
	}
	if cfg.ItemMargin < 0 {
		cfg.ItemMargin = 0
	}
	if cfg.Icons == "" {
		cfg.Icons = "unicode"
	}

	return cfg
}

// NotifyEnabled reports whether desktop notifications are enabled.
func (u UIConfig) NotifyEnabled() bool {
	return u.Notify == nil || *u.Notify
}

// Debounce returns the UI debounce delay.
func (u UIConfig) Debounce() time.Duration {
	return time.Duration(u.DebounceMS) * time.Millisecond
}

// GetArtworkConfig returns the artwork configuration with defaults applied.
func (c *Config) GetArtworkConfig() ArtworkConfig {
	cfg := c.Artwork

	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(xdg.CacheHome, "marquee", "artwork")
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 8
	}
	if cfg.MaxCacheMB <= 0 {
		cfg.MaxCacheMB = 200
	}

	return cfg
}

// StateDir is where the log file and the resume database live.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "marquee")
}
