package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/callbridge/internal/intent"
	"github.com/Iron-Ham/callbridge/internal/share/inbox"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Deliver activations to the share inbox",
}

var shareSendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Share text with the bridge",
	Long: `Drop an activation into the share inbox of a running bridge.

The text comes from the arguments, or from stdin when no arguments are
given. With --intent the named JSON file is delivered as-is, which allows
sending activations that are not plain-text shares.

Examples:
  callbridge share send "hello from the terminal"
  echo hello | callbridge share send
  callbridge share send --intent view.json`,
	RunE: runShareSend,
}

var shareIntentFile string

func init() {
	rootCmd.AddCommand(shareCmd)
	shareCmd.AddCommand(shareSendCmd)

	shareSendCmd.Flags().StringVar(&shareIntentFile, "intent", "", "JSON activation file to deliver instead of text")
}

func runShareSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.InboxDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}

	var path string
	switch {
	case shareIntentFile != "":
		if len(args) > 0 {
			return fmt.Errorf("--intent cannot be combined with text arguments")
		}
		data, err := os.ReadFile(shareIntentFile)
		if err != nil {
			return err
		}
		in, err := intent.Decode(data)
		if err != nil {
			return err
		}
		path, err = inbox.Write(dir, in)
		if err != nil {
			return err
		}
	case len(args) > 0:
		path, err = inbox.WriteText(dir, strings.Join(args, " "))
		if err != nil {
			return err
		}
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		path, err = inbox.WriteText(dir, strings.TrimSuffix(string(data), "\n"))
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Queued %s\n", path)
	return nil
}
