package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/callbridge/internal/bridge"
	"github.com/Iron-Ham/callbridge/internal/host"
	"github.com/Iron-Ham/callbridge/internal/transport"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <channel> <method> [key=value...]",
	Short: "Send one command to the bridge",
	Long: `Send one command and print the response envelope as JSON.

The channel is the short name (call_log, share, launcher); the configured
prefix is added automatically. Argument values are parsed as JSON when
possible and passed as strings otherwise.

Without --url the command runs against an in-process bridge built from
the current configuration. Note that the share cell of an in-process
bridge starts empty.

Examples:
  callbridge invoke call_log getCallsSince timestamp=0
  callbridge invoke launcher launchApp packageName=org.gnome.Calculator
  callbridge invoke share getSharedText --url ws://127.0.0.1:7341/bridge`,
	Args: cobra.MinimumNArgs(2),
	RunE: runInvoke,
}

var (
	invokeURL     string
	invokeTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(invokeCmd)

	invokeCmd.Flags().StringVar(&invokeURL, "url", "", "Websocket URL of a running bridge")
	invokeCmd.Flags().DurationVar(&invokeTimeout, "timeout", 10*time.Second, "Request timeout")
}

func runInvoke(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	callArgs, err := parseCallArgs(args[2:])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), invokeTimeout)
	defer cancel()

	var resp transport.Response
	if invokeURL != "" {
		client, err := transport.Dial(ctx, invokeURL)
		if err != nil {
			return err
		}
		defer client.Close()

		resp, err = client.Call(ctx, cfg.ChannelName(args[0]), args[1], callArgs)
		if err != nil {
			return err
		}
	} else {
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Close()

		h, err := host.New(cfg, host.WithLogger(logger))
		if err != nil {
			return err
		}
		defer h.Stop(context.Background())

		r := h.Dispatch(ctx, args[0], args[1], callArgs)
		resp = transport.Response{Status: r.Status, Result: r.Result, Error: r.Error}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// parseCallArgs turns key=value pairs into an argument bag. Values that
// parse as JSON keep their JSON type; integers stay exact.
func parseCallArgs(pairs []string) (bridge.Args, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(bridge.Args, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", pair)
		}

		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil || dec.More() {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}
