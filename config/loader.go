package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Load reads the configuration from config.toml and returns a Config struct.
// A missing config file is not an error: defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("$HOME/.config/cine/")
	v.AddConfigPath(".")

	defaults := DefaultConfig()
	v.SetDefault("player.volume", defaults.Player.Volume)
	v.SetDefault("player.seek_step_seconds", defaults.Player.SeekStepSeconds)
	v.SetDefault("player.ffprobe_path", defaults.Player.FFProbePath)
	v.SetDefault("player.hardware_decoding", defaults.Player.HardwareDecoding)
	v.SetDefault("ui.scrubber_width", defaults.UI.ScrubberWidth)
	v.SetDefault("ui.max_title_width", defaults.UI.MaxTitleWidth)
	v.SetDefault("logs.level", defaults.Logs.Level)
	v.SetDefault("logs.write", defaults.Logs.Write)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
