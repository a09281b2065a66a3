package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete callbridge configuration
type Config struct {
	Bridge    BridgeConfig    `mapstructure:"bridge" yaml:"bridge"`
	CallLog   CallLogConfig   `mapstructure:"calllog" yaml:"calllog"`
	Share     ShareConfig     `mapstructure:"share" yaml:"share"`
	Launcher  LauncherConfig  `mapstructure:"launcher" yaml:"launcher"`
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Paths     PathsConfig     `mapstructure:"paths" yaml:"paths"`
}

// BridgeConfig controls how channels are named on the wire
type BridgeConfig struct {
	// ChannelPrefix is prepended to every channel name (default: "com.example.calllog/")
	ChannelPrefix string `mapstructure:"channel_prefix" yaml:"channel_prefix"`
}

// CallLogConfig controls the host call-history store
type CallLogConfig struct {
	// Database is the SQLite file holding call records.
	// Empty means <data_dir>/calls.db
	Database string `mapstructure:"database" yaml:"database"`
}

// ShareConfig controls inbound share capture
type ShareConfig struct {
	// InboxDir is the directory watched for activation files.
	// Empty means <data_dir>/inbox
	InboxDir string `mapstructure:"inbox_dir" yaml:"inbox_dir"`
	// ReplayOnResume re-offers the latest share on every foreground
	// transition, even if it was already read (default: true)
	ReplayOnResume bool `mapstructure:"replay_on_resume" yaml:"replay_on_resume"`
	// MimeTypes lists the MIME types accepted as shared text (default: ["text/plain"])
	MimeTypes []string `mapstructure:"mime_types" yaml:"mime_types"`
}

// LauncherConfig controls application launching
type LauncherConfig struct {
	// ApplicationDirs are searched for desktop entries in order.
	// Empty means the XDG application directories
	ApplicationDirs []string `mapstructure:"application_dirs" yaml:"application_dirs"`
	// Allow lists glob patterns of application ids that may be launched (default: ["*"])
	Allow []string `mapstructure:"allow" yaml:"allow"`
	// Deny lists glob patterns that are never launched, checked before Allow
	Deny []string `mapstructure:"deny" yaml:"deny"`
}

// TransportConfig controls how the UI reaches the bridge
type TransportConfig struct {
	// Mode is "websocket" or "stdio" (default: "websocket")
	Mode string `mapstructure:"mode" yaml:"mode"`
	// ListenAddr is the websocket listen address (default: "127.0.0.1:7341")
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// Path is the HTTP path accepting websocket upgrades (default: "/bridge")
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled writes logs to <data_dir>/callbridge.log; when false logs go
	// to stderr (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// MaxSizeMB is the maximum size of a log file before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// PathsConfig controls where callbridge keeps its state
type PathsConfig struct {
	// DataDir holds the database, inbox and log file.
	// Empty means $XDG_DATA_HOME/callbridge
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// Transport modes
const (
	TransportWebsocket = "websocket"
	TransportStdio     = "stdio"
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ChannelPrefix: "com.example.calllog/",
		},
		CallLog: CallLogConfig{
			Database: "", // Empty means <data_dir>/calls.db
		},
		Share: ShareConfig{
			InboxDir:       "", // Empty means <data_dir>/inbox
			ReplayOnResume: true,
			MimeTypes:      []string{"text/plain"},
		},
		Launcher: LauncherConfig{
			ApplicationDirs: []string{},
			Allow:           []string{"*"},
			Deny:            []string{},
		},
		Transport: TransportConfig{
			Mode:       TransportWebsocket,
			ListenAddr: "127.0.0.1:7341",
			Path:       "/bridge",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Paths: PathsConfig{
			DataDir: "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("bridge.channel_prefix", defaults.Bridge.ChannelPrefix)

	viper.SetDefault("calllog.database", defaults.CallLog.Database)

	viper.SetDefault("share.inbox_dir", defaults.Share.InboxDir)
	viper.SetDefault("share.replay_on_resume", defaults.Share.ReplayOnResume)
	viper.SetDefault("share.mime_types", defaults.Share.MimeTypes)

	viper.SetDefault("launcher.application_dirs", defaults.Launcher.ApplicationDirs)
	viper.SetDefault("launcher.allow", defaults.Launcher.Allow)
	viper.SetDefault("launcher.deny", defaults.Launcher.Deny)

	viper.SetDefault("transport.mode", defaults.Transport.Mode)
	viper.SetDefault("transport.listen_addr", defaults.Transport.ListenAddr)
	viper.SetDefault("transport.path", defaults.Transport.Path)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ChannelName returns the wire name of the named channel.
func (c *Config) ChannelName(name string) string {
	return c.Bridge.ChannelPrefix + name
}

// DataDir returns the resolved data directory.
func (c *Config) DataDir() string {
	if c.Paths.DataDir != "" {
		return expandHome(c.Paths.DataDir)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "callbridge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".callbridge"
	}
	return filepath.Join(home, ".local", "share", "callbridge")
}

// DatabasePath returns the resolved call database path.
func (c *Config) DatabasePath() string {
	return c.resolve(c.CallLog.Database, "calls.db")
}

// InboxDir returns the resolved share inbox directory.
func (c *Config) InboxDir() string {
	return c.resolve(c.Share.InboxDir, "inbox")
}

// LogFile returns the log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir(), "callbridge.log")
}

// resolve expands ~ and makes a relative path relative to the data
// directory. An empty path yields <data_dir>/fallback.
func (c *Config) resolve(path, fallback string) string {
	if path == "" {
		return filepath.Join(c.DataDir(), fallback)
	}
	path = expandHome(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.DataDir(), path)
	}
	return path
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "callbridge")
	}
	// Fall back to ~/.config/callbridge
	home, err := os.UserHomeDir()
	if err != nil {
		return ".callbridge"
	}
	return filepath.Join(home, ".config", "callbridge")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidTransportModes returns the list of valid transport modes
func ValidTransportModes() []string {
	return []string{TransportWebsocket, TransportStdio}
}

// IsValidTransportMode checks if the given mode is valid
func IsValidTransportMode(mode string) bool {
	return slices.Contains(ValidTransportModes(), mode)
}
