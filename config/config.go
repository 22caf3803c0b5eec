package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	Player PlayerConfig `mapstructure:"player"`
	UI     UIConfig     `mapstructure:"ui"`
	Logs   LogsConfig   `mapstructure:"logs"`
}

// PlayerConfig contains playback engine settings
type PlayerConfig struct {
	Volume           float64 `mapstructure:"volume"`            // initial volume, 0..1
	SeekStepSeconds  float64 `mapstructure:"seek_step_seconds"` // arrow-key scrub step
	FFProbePath      string  `mapstructure:"ffprobe_path"`      // empty means "ffprobe" on PATH
	HardwareDecoding bool    `mapstructure:"hardware_decoding"`
}

// UIConfig contains user interface settings
type UIConfig struct {
	ScrubberWidth int `mapstructure:"scrubber_width"`
	MaxTitleWidth int `mapstructure:"max_title_width"`
}

// LogsConfig contains logging settings
type LogsConfig struct {
	Level string `mapstructure:"level"`
	Write bool   `mapstructure:"write"`
}

// Validate checks if all configuration values are within acceptable bounds
func (c *Config) Validate() error {
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return fmt.Errorf("player.volume must be between 0 and 1, got %v", c.Player.Volume)
	}
	if c.Player.SeekStepSeconds <= 0 {
		return fmt.Errorf("player.seek_step_seconds must be positive, got %v", c.Player.SeekStepSeconds)
	}
	if c.UI.ScrubberWidth < 10 {
		return fmt.Errorf("ui.scrubber_width must be at least 10, got %d", c.UI.ScrubberWidth)
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Volume:          1.0,
			SeekStepSeconds: 10,
		},
		UI: UIConfig{
			ScrubberWidth: 40,
			MaxTitleWidth: 60,
		},
		Logs: LogsConfig{
			Level: "info",
		},
	}
}
