package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds runtime options for the CLI.
// Values are populated from .systree.yaml, SYSTREE_* env vars, and flags.
type Settings struct {
	DataDir     string `mapstructure:"data_dir"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	FPS         int    `mapstructure:"fps"`
	Steps       int    `mapstructure:"steps"`
	Integrator  string `mapstructure:"integrator"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".systree")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("fps", 30)
	v.SetDefault("steps", DefaultSteps)
	v.SetDefault("integrator", DefaultIntegrator)
	v.SetDefault("metrics_addr", "")
}

// LoadSettings reads settings from v, applying built-in defaults for any
// values not set by config file, environment, or flags. A nil v reads the
// global viper instance.
func LoadSettings(v *viper.Viper) (Settings, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("config: settings: %w", err)
	}
	if s.FPS <= 0 {
		return s, fmt.Errorf("config: fps must be positive, got %d", s.FPS)
	}
	if s.Steps <= 0 {
		return s, fmt.Errorf("config: steps must be positive, got %d", s.Steps)
	}
	return s, nil
}
