// Package config loads the forecast service configuration from defaults, an optional config
// file and FORECASTER_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	forecaster "github.com/aouyang1/go-forecaster-server"
	"github.com/aouyang1/go-forecaster-server/forecast/options"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "FORECASTER"
	ConfigName = "forecasterd"

	DefaultHorizon = 365
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownLogLevel = errors.New("unknown log level")
	ErrUnknownLogFmt   = errors.New("unknown log format")
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Model    ModelConfig    `mapstructure:"model"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AdminAddr       string        `mapstructure:"admin_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	AccessLog       bool          `mapstructure:"access_log"`
	Compress        bool          `mapstructure:"compress"`
}

type ForecastConfig struct {
	DefaultHorizon int           `mapstructure:"default_horizon"`
	MaxHorizon     int           `mapstructure:"max_horizon"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type ModelConfig struct {
	Growth           string        `mapstructure:"growth"`
	DailyOrders      int           `mapstructure:"daily_orders"`
	WeeklyOrders     int           `mapstructure:"weekly_orders"`
	YearlyOrders     int           `mapstructure:"yearly_orders"`
	Changepoints     int           `mapstructure:"changepoints"`
	ChangepointRange float64       `mapstructure:"changepoint_range"`
	Holidays         []string      `mapstructure:"holidays"`
	HolidayBefore    time.Duration `mapstructure:"holiday_before"`
	HolidayAfter     time.Duration `mapstructure:"holiday_after"`
	Weekend          bool          `mapstructure:"weekend"`
	WeekendTimezone  string        `mapstructure:"weekend_timezone"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.admin_addr", ":9090")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", int64(10<<20))
	v.SetDefault("server.access_log", false)
	v.SetDefault("server.compress", true)

	v.SetDefault("forecast.default_horizon", DefaultHorizon)
	v.SetDefault("forecast.max_horizon", forecaster.DefaultMaxHorizon)
	v.SetDefault("forecast.timeout", forecaster.DefaultTimeout)

	v.SetDefault("model.growth", options.GrowthLinear)
	v.SetDefault("model.daily_orders", 4)
	v.SetDefault("model.weekly_orders", 3)
	v.SetDefault("model.yearly_orders", 10)
	v.SetDefault("model.changepoints", 0)
	v.SetDefault("model.changepoint_range", options.DefaultChangepointRange)
	v.SetDefault("model.holidays", []string{"us"})
	v.SetDefault("model.holiday_before", time.Duration(0))
	v.SetDefault("model.holiday_after", time.Duration(0))
	v.SetDefault("model.weekend", false)
	v.SetDefault("model.weekend_timezone", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Default returns the configuration used when no file or environment overrides are present
func Default() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		// defaults always validate
		panic(err)
	}
	return cfg
}

// Load reads the configuration. An empty path searches the working directory and
// /etc/forecasterd for a forecasterd config file and falls back to the defaults if none exist.
// Overrides are keyed by the dotted config key and take precedence over every other source.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file %s, %w", path, err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/forecasterd")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("unable to read config file, %w", err)
			}
		}
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("loaded config file", "path", used)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty, %w", ErrInvalidConfig)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes of %d, %w", c.Server.MaxBodyBytes, ErrInvalidConfig)
	}
	if c.Forecast.DefaultHorizon <= 0 {
		return fmt.Errorf("forecast.default_horizon of %d, %w", c.Forecast.DefaultHorizon, ErrInvalidConfig)
	}
	if c.Forecast.MaxHorizon > 0 && c.Forecast.DefaultHorizon > c.Forecast.MaxHorizon {
		return fmt.Errorf("forecast.default_horizon of %d exceeds forecast.max_horizon of %d, %w",
			c.Forecast.DefaultHorizon, c.Forecast.MaxHorizon, ErrInvalidConfig)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%q, %w", c.Log.Format, ErrUnknownLogFmt)
	}
	if _, err := c.EngineOptions(); err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	return nil
}

// ModelOptions converts the model section into forecast options
func (m ModelConfig) ModelOptions() *options.Options {
	opt := &options.Options{
		GrowthType: m.Growth,
		ChangepointOptions: options.ChangepointOptions{
			Auto:  m.Changepoints,
			Range: m.ChangepointRange,
		},
		HolidayOptions: options.HolidayOptions{
			Countries: m.Holidays,
			DurBefore: m.HolidayBefore,
			DurAfter:  m.HolidayAfter,
		},
		WeekendOptions: options.WeekendOptions{
			Enabled:          m.Weekend,
			TimezoneOverride: m.WeekendTimezone,
		},
	}
	if m.DailyOrders > 0 {
		opt.SeasonalityOptions.SeasonalityConfigs = append(opt.SeasonalityOptions.SeasonalityConfigs,
			options.NewDailySeasonalityConfig(m.DailyOrders))
	}
	if m.WeeklyOrders > 0 {
		opt.SeasonalityOptions.SeasonalityConfigs = append(opt.SeasonalityOptions.SeasonalityConfigs,
			options.NewWeeklySeasonalityConfig(m.WeeklyOrders))
	}
	if m.YearlyOrders > 0 {
		opt.SeasonalityOptions.SeasonalityConfigs = append(opt.SeasonalityOptions.SeasonalityConfigs,
			options.NewYearlySeasonalityConfig(m.YearlyOrders))
	}
	return opt
}

// EngineOptions converts the forecast and model sections into validated engine options
func (c *Config) EngineOptions() (*forecaster.Options, error) {
	opt := &forecaster.Options{
		MaxHorizon:   c.Forecast.MaxHorizon,
		Timeout:      c.Forecast.Timeout,
		ModelOptions: c.Model.ModelOptions(),
	}
	return opt.Validate()
}

// SlogLevel parses the configured log level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("%q, %w", l.Level, ErrUnknownLogLevel)
	}
	return lvl, nil
}
