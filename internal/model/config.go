package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// IMAPConfig holds the mailbox connection and search settings.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`

	// Password may be left empty; it is then looked up in the system
	// keyring or prompted for.
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`

	// Mailbox is the folder searched for notifications.
	Mailbox string `mapstructure:"mailbox" yaml:"mailbox"`

	// From restricts the search to messages from this sender.
	From string `mapstructure:"from" yaml:"from"`

	// StartDate seeds the watermark on the very first run.
	StartDate string `mapstructure:"start_date" yaml:"start_date"`

	// TimeoutSec bounds a single fetch.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ReportsConfig controls where CSV reports are written.
type ReportsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Unclassified decides what happens to listings without a lifecycle
	// type: "separate", "drop", or a lifecycle type name to assign.
	Unclassified string `mapstructure:"unclassified" yaml:"unclassified"`
}

// WatermarkConfig locates the watermark file.
type WatermarkConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// StoreConfig selects the archive database. An empty driver disables it.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// PollConfig holds settings for watch mode.
type PollConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	IMAP      IMAPConfig      `mapstructure:"imap" yaml:"imap"`
	Reports   ReportsConfig   `mapstructure:"reports" yaml:"reports"`
	Watermark WatermarkConfig `mapstructure:"watermark" yaml:"watermark"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Poll      PollConfig      `mapstructure:"poll" yaml:"poll"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// startDateLayouts are the accepted spellings of imap.start_date.
var startDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	time.RFC3339,
}

// StartTime parses IMAP.StartDate.
func (c IMAPConfig) StartTime() (time.Time, error) {
	s := strings.TrimSpace(c.StartDate)
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid imap.start_date %q", c.StartDate)
}

// Timeout returns the fetch timeout, defaulting to two minutes.
func (c IMAPConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// Interval returns the watch-mode polling interval.
func (c PollConfig) Interval() time.Duration {
	if c.IntervalSec <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.IntervalSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/autoniq-extractor/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "autoniq-extractor", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		IMAP: IMAPConfig{
			Port:       "993",
			TLS:        true,
			Mailbox:    "INBOX/Autoniq",
			StartDate:  "2017-01-01",
			TimeoutSec: 120,
		},
		Reports: ReportsConfig{
			Dir:          ".",
			Unclassified: "separate",
		},
		Watermark: WatermarkConfig{
			Path: "LastUpdated.txt",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "listings.db",
		},
		Poll: PollConfig{
			IntervalSec: 900,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// setDefaults registers every key with viper so that environment
// overrides resolve even when the file omits them.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("imap.host", "")
	v.SetDefault("imap.port", d.IMAP.Port)
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.tls", d.IMAP.TLS)
	v.SetDefault("imap.mailbox", d.IMAP.Mailbox)
	v.SetDefault("imap.from", "")
	v.SetDefault("imap.start_date", d.IMAP.StartDate)
	v.SetDefault("imap.timeout_sec", d.IMAP.TimeoutSec)
	v.SetDefault("reports.dir", d.Reports.Dir)
	v.SetDefault("reports.unclassified", d.Reports.Unclassified)
	v.SetDefault("watermark.path", d.Watermark.Path)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("poll.interval_sec", d.Poll.IntervalSec)
	v.SetDefault("log.level", d.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden by AUTONIQ_* environment variables, e.g.
// AUTONIQ_IMAP_PASSWORD. If the file does not exist, defaults and the
// environment are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("AUTONIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The IMAP password is never
// written; it belongs in the keyring.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	imapCfg := cfg.IMAP
	imapCfg.Password = ""

	v.Set("imap", imapCfg)
	v.Set("reports", cfg.Reports)
	v.Set("watermark", cfg.Watermark)
	v.Set("store", cfg.Store)
	v.Set("poll", cfg.Poll)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
