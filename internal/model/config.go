package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ChannelConfig holds the configuration for a single messaging-channel
// integration.
type ChannelConfig struct {
	// Type identifies the channel kind ("telegram" or "mail").
	Type string `mapstructure:"type" yaml:"type"`

	// Name is the user-defined label for this channel instance.
	Name string `mapstructure:"name" yaml:"name"`

	// Enabled controls whether this channel is actively polled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// PollIntervalSec is how often (in seconds) to fetch new messages.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// ChatID is the telegram chat the bot publishes to and reads from.
	ChatID int64 `mapstructure:"chat_id" yaml:"chat_id"`

	// Mail settings. Passwords and bot tokens live in the keyring,
	// never in the config file.
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort string `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username string `mapstructure:"username" yaml:"username"`
	UseTLS   bool   `mapstructure:"use_tls" yaml:"use_tls"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// Window is the daily hour range during which report entry is open.
	Window ActiveWindow `mapstructure:"window" yaml:"window"`

	// Channels lists the configured messaging-channel integrations.
	Channels []ChannelConfig `mapstructure:"channels" yaml:"channels"`

	// SharedDocPath is the location of the shared plain-text document
	// used for cross-device merge.
	SharedDocPath string `mapstructure:"shared_doc_path" yaml:"shared_doc_path"`

	// VoiceDir is where voice-note audio files are kept.
	VoiceDir string `mapstructure:"voice_dir" yaml:"voice_dir"`

	// AllowReevaluation permits re-running the completion check on an
	// already evaluated custom report.
	AllowReevaluation bool `mapstructure:"allow_reevaluation" yaml:"allow_reevaluation"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/lazybones/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "lazybones", "config.yaml")
}

// DefaultDBPath returns the default location of the sqlite database.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "lazybones.db")
	}
	return filepath.Join(home, ".config", "lazybones", "lazybones.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		Window:        ActiveWindow{StartHour: 8, EndHour: 22},
		Channels:      []ChannelConfig{},
		SharedDocPath: filepath.Join(home, ".config", "lazybones", "shared.txt"),
		VoiceDir:      filepath.Join(home, ".config", "lazybones", "voice"),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("window.start_hour", 8)
	v.SetDefault("window.end_hour", 22)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Window.EndHour <= cfg.Window.StartHour {
		return nil, fmt.Errorf(
			"config %s: window end_hour %d must be after start_hour %d",
			path, cfg.Window.EndHour, cfg.Window.StartHour,
		)
	}

	// Apply defaults for each channel entry.
	for i := range cfg.Channels {
		if cfg.Channels[i].PollIntervalSec == 0 {
			cfg.Channels[i].PollIntervalSec = 120
		}
		if !cfg.Channels[i].Enabled {
			// Viper unmarshals missing bools as false; treat unset as true.
			key := fmt.Sprintf("channels.%d.enabled", i)
			if !v.IsSet(key) {
				cfg.Channels[i].Enabled = true
			}
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("window", cfg.Window)
	v.Set("channels", cfg.Channels)
	v.Set("shared_doc_path", cfg.SharedDocPath)
	v.Set("voice_dir", cfg.VoiceDir)
	v.Set("allow_reevaluation", cfg.AllowReevaluation)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
