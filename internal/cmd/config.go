package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/callbridge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify callbridge configuration",
	Long: `View or modify callbridge configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  callbridge config set transport.mode stdio
  callbridge config set logging.level debug
  callbridge config set share.replay_on_resume false

Valid keys:
  bridge.channel_prefix      - Prefix added to every channel name
  calllog.database           - SQLite file with call records
  share.inbox_dir            - Directory watched for share activations
  share.replay_on_resume     - Re-offer the latest share on resume (true/false)
  transport.mode             - Options: websocket, stdio
  transport.listen_addr      - Websocket listen address
  transport.path             - Websocket upgrade path
  logging.enabled            - Write logs to the data directory (true/false)
  logging.level              - Options: debug, info, warn, error
  logging.max_size_mb        - Log size before rotation
  logging.max_backups        - Rotated log files to keep
  paths.data_dir             - Directory for the database, inbox and logs

List values (launcher.allow, launcher.deny, share.mime_types,
launcher.application_dirs) are edited in the config file directly.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/callbridge/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	fmt.Fprintf(out, "# Data directory: %s\n\n", cfg.DataDir())

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

// settableKeys maps each key accepted by 'config set' to its value kind.
var settableKeys = map[string]string{
	"bridge.channel_prefix":  "string",
	"calllog.database":       "string",
	"share.inbox_dir":        "string",
	"share.replay_on_resume": "bool",
	"transport.mode":         "string",
	"transport.listen_addr":  "string",
	"transport.path":         "string",
	"logging.enabled":        "bool",
	"logging.level":          "string",
	"logging.max_size_mb":    "int",
	"logging.max_backups":    "int",
	"paths.data_dir":         "string",
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	keyType, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'callbridge config set --help' to see valid keys", key)
	}

	var typedValue any
	switch keyType {
	case "string":
		switch key {
		case "transport.mode":
			if !config.IsValidTransportMode(value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidTransportModes(), ", "))
			}
		case "logging.level":
			if !slices.Contains(config.ValidLogLevels(), value) {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(config.ValidLogLevels(), ", "))
			}
		}
		typedValue = value
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = b
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = n
	}

	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typedValue)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

const defaultConfigTemplate = `# callbridge configuration

# Channel names on the wire are <channel_prefix><channel>
bridge:
  channel_prefix: %q

# Host call-history store (empty: <data_dir>/calls.db)
calllog:
  database: ""

# Inbound shares arrive as files in inbox_dir (empty: <data_dir>/inbox)
share:
  inbox_dir: ""
  # Re-offer the latest share every time the UI comes to the foreground
  replay_on_resume: %t
  mime_types:
%s
# Application launching
launcher:
  # Searched for .desktop files in order (empty: XDG application dirs)
  application_dirs: []
  # Glob patterns of application ids; deny is checked first
  allow:
%s  deny: []

# How the UI process reaches the bridge
# Options: websocket, stdio
transport:
  mode: %s
  listen_addr: %q
  path: %q

logging:
  # false sends logs to stderr instead of <data_dir>/callbridge.log
  enabled: %t
  # Options: debug, info, warn, error
  level: %s
  max_size_mb: %d
  max_backups: %d
  compress: %t

paths:
  # Empty means $XDG_DATA_HOME/callbridge
  data_dir: ""
`

func yamlList(items []string, indent string) string {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "%s- %q\n", indent, item)
	}
	return sb.String()
}

// defaultConfigYAML renders the commented default configuration.
func defaultConfigYAML() string {
	d := config.Default()
	return fmt.Sprintf(defaultConfigTemplate,
		d.Bridge.ChannelPrefix,
		d.Share.ReplayOnResume,
		yamlList(d.Share.MimeTypes, "    "),
		yamlList(d.Launcher.Allow, "    "),
		d.Transport.Mode,
		d.Transport.ListenAddr,
		d.Transport.Path,
		d.Logging.Enabled,
		d.Logging.Level,
		d.Logging.MaxSizeMB,
		d.Logging.MaxBackups,
		d.Logging.Compress,
	)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'callbridge config set' to modify values", configFile)
	}

	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigYAML()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize callbridge's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "  2. $HOME/.config/callbridge/config.yaml")
	fmt.Fprintln(out, "  3. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: CALLBRIDGE_* (e.g., CALLBRIDGE_TRANSPORT_MODE)")
	return nil
}
