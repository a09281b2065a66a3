package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/callbridge/internal/config"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "callbridge",
	Short: "Bridge between a UI process and host call, share and launch services",
	Long: `Callbridge answers commands from a user-interface process on three
channels: call history since a timestamp, text shared into the app by
another application, and launching other installed applications.

Run 'callbridge serve' to start the bridge; the other commands populate
the host call store, simulate shares and exercise the channels by hand.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/callbridge/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/callbridge")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CALLBRIDGE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., CALLBRIDGE_TRANSPORT_LISTEN_ADDR for transport.listen_addr
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig returns the validated configuration.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newLogger builds the process logger from cfg. With file logging
// disabled, logs go to stderr.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.New(os.Stderr, cfg.Logging.Level), nil
	}

	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return nil, err
	}
	return logging.NewFileLogger(cfg.LogFile(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}
