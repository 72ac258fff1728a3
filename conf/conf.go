// Package conf loads the overlay configuration with viper and reloads it when
// the file changes.
package conf

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"perfoverlay/attention"
	"perfoverlay/overlay"
)

const envPrefix = "PERFOVERLAY"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Overlay OverlayConfig `mapstructure:"overlay"`
	Host    HostConfig    `mapstructure:"host"`
	Log     LogConfig     `mapstructure:"log"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type OverlayConfig struct {
	Smoothing          string        `mapstructure:"smoothing"`
	FrameTimeWindow    time.Duration `mapstructure:"frame_time_window"`
	FPSWindow          time.Duration `mapstructure:"fps_window"`
	FrameTimeThreshold float64       `mapstructure:"frame_time_threshold"`
	FPSThreshold       float64       `mapstructure:"fps_threshold"`
	QuietTimeout       time.Duration `mapstructure:"quiet_timeout"`
	RevealDuration     time.Duration `mapstructure:"reveal_duration"`
	ConcealDuration    time.Duration `mapstructure:"conceal_duration"`
	StatsWindow        time.Duration `mapstructure:"stats_window"`
	StatsBuckets       int           `mapstructure:"stats_buckets"`
	FrameTimeColor     string        `mapstructure:"frame_time_color"`
	FPSColor           string        `mapstructure:"fps_color"`
}

type HostConfig struct {
	// frames per second the host loop targets
	TickRate          int           `mapstructure:"tick_rate"`
	PublishInterval   time.Duration `mapstructure:"publish_interval"`
	FPSUpdateInterval time.Duration `mapstructure:"fps_update_interval"`
	CPU               bool          `mapstructure:"cpu"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type RedisConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("overlay.smoothing", overlay.SmoothingEWMA)
	v.SetDefault("overlay.frame_time_window", time.Second)
	v.SetDefault("overlay.fps_window", 400*time.Millisecond)
	v.SetDefault("overlay.frame_time_threshold", overlay.FrameTimeThreshold)
	v.SetDefault("overlay.fps_threshold", overlay.FPSThreshold)
	v.SetDefault("overlay.quiet_timeout", attention.DefaultQuietTimeout)
	v.SetDefault("overlay.reveal_duration", attention.DefaultRevealDuration)
	v.SetDefault("overlay.conceal_duration", attention.DefaultConcealDuration)
	v.SetDefault("overlay.stats_window", 10*time.Second)
	v.SetDefault("overlay.stats_buckets", 10)
	v.SetDefault("overlay.frame_time_color", overlay.DefaultTheme.FrameTime)
	v.SetDefault("overlay.fps_color", overlay.DefaultTheme.FPS)

	v.SetDefault("host.tick_rate", 60)
	v.SetDefault("host.publish_interval", 250*time.Millisecond)
	v.SetDefault("host.fps_update_interval", time.Second)
	v.SetDefault("host.cpu", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.file", "")
	v.SetDefault("log.compress", false)

	v.SetDefault("redis.enable", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "perfoverlay")
}

// New returns a viper instance with defaults and env overrides
// (PERFOVERLAY_OVERLAY_FPS_WINDOW=1s). path may be empty.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

func Load(path string) (*viper.Viper, *Config, error) {
	v := New(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, errors.Wrapf(err, "read config %s", path)
		}
	}
	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return v, cfg, nil
}

func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	o := c.Overlay
	windows := map[string]time.Duration{
		"overlay.frame_time_window": o.FrameTimeWindow,
		"overlay.fps_window":        o.FPSWindow,
		"overlay.quiet_timeout":     o.QuietTimeout,
		"overlay.stats_window":      o.StatsWindow,
	}
	for name, d := range windows {
		if d <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be positive, got %s", name, d)
		}
	}
	switch o.Smoothing {
	case overlay.SmoothingEWMA, overlay.SmoothingMean:
	default:
		return errors.Wrapf(ErrInvalidConfig, "overlay.smoothing must be %s or %s, got %q",
			overlay.SmoothingEWMA, overlay.SmoothingMean, o.Smoothing)
	}
	if o.FrameTimeThreshold < 0 || o.FPSThreshold < 0 {
		return errors.Wrap(ErrInvalidConfig, "thresholds must not be negative")
	}
	if o.StatsBuckets <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "overlay.stats_buckets must be positive, got %d", o.StatsBuckets)
	}
	if c.Host.TickRate <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "host.tick_rate must be positive, got %d", c.Host.TickRate)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log.level: %v", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.Wrapf(ErrInvalidConfig, "log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Redis.Enable && (c.Redis.Addr == "" || c.Redis.Channel == "") {
		return errors.Wrap(ErrInvalidConfig, "redis.addr and redis.channel are required when redis is enabled")
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (c *Config) OverlayOptions(log *zap.Logger) overlay.Options {
	o := c.Overlay
	return overlay.Options{
		Smoothing:           o.Smoothing,
		FrameTimeWindow:     ms(o.FrameTimeWindow),
		FPSWindow:           ms(o.FPSWindow),
		FrameTimeThreshold:  o.FrameTimeThreshold,
		FPSThreshold:        o.FPSThreshold,
		StatsBuckets:        o.StatsBuckets,
		StatsBucketDuration: ms(o.StatsWindow) / float64(o.StatsBuckets),
		Attention: attention.Options{
			QuietTimeout:    o.QuietTimeout,
			RevealDuration:  o.RevealDuration,
			ConcealDuration: o.ConcealDuration,
			Logger:          log,
		},
		Theme: overlay.Theme{
			FrameTime: o.FrameTimeColor,
			FPS:       o.FPSColor,
		},
		Logger: log,
	}
}

// Watch calls onChange with every valid configuration written to the file.
// Invalid edits are logged and skipped.
func Watch(v *viper.Viper, log *zap.Logger, onChange func(*Config)) {
	v.OnConfigChange(reloadHandler(v, log, onChange))
	v.WatchConfig()
}

func reloadHandler(v *viper.Viper, log *zap.Logger, onChange func(*Config)) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v)
		if err != nil {
			log.Warn("ignoring config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		log.Info("config reloaded", zap.String("file", e.Name))
		onChange(cfg)
	}
}
