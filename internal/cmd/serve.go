package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/callbridge/internal/config"
	"github.com/Iron-Ham/callbridge/internal/host"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long: `Run the bridge until interrupted.

In websocket mode (the default) the bridge listens on transport.listen_addr
and every client connection counts as the app coming to the foreground.
In stdio mode it reads one JSON request per line from stdin and writes one
response per line to stdout, exiting at end of input.

The share inbox (share.inbox_dir) is watched in both modes.`,
	RunE: runServe,
}

var (
	serveStdio  bool
	serveListen string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "Serve newline-delimited JSON on stdin/stdout")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Websocket listen address (overrides transport.listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveStdio {
		cfg.Transport.Mode = config.TransportStdio
	}
	if serveListen != "" {
		cfg.Transport.ListenAddr = serveListen
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	h, err := host.New(cfg, host.WithLogger(logger))
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Transport.Mode == config.TransportWebsocket {
		cmd.PrintErrf("callbridge listening on ws://%s%s\n", cfg.Transport.ListenAddr, cfg.Transport.Path)
	}
	return h.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
