package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/callbridge/internal/errors"
	"github.com/Iron-Ham/callbridge/internal/launcher"
	"github.com/Iron-Ham/callbridge/internal/launcher/desktop"
)

var launchCmd = &cobra.Command{
	Use:   "launch [appID]",
	Short: "Launch an installed application",
	Long: `Launch an installed application the same way the launcher channel
does, reporting why a launch failed.

With --list, print the launchable applications instead.

Examples:
  callbridge launch org.gnome.Calculator
  callbridge launch --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLaunch,
}

var launchList bool

func init() {
	rootCmd.AddCommand(launchCmd)

	launchCmd.Flags().BoolVar(&launchList, "list", false, "List launchable applications")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	platform := desktop.New(cfg.Launcher.ApplicationDirs, desktop.WithLogger(logger))
	policy, err := launcher.NewPolicy(cfg.Launcher.Allow, cfg.Launcher.Deny)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if launchList {
		entries, err := platform.Entries()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tALLOWED")
		for _, e := range entries {
			if !e.Visible() {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%t\n", e.ID, e.Name, policy.Allowed(e.ID))
		}
		return tw.Flush()
	}

	if len(args) == 0 {
		return fmt.Errorf("an application id is required unless --list is given")
	}

	svc := launcher.NewService(platform,
		launcher.WithLogger(logger),
		launcher.WithPolicy(policy),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	outcome, err := svc.Attempt(ctx, args[0])
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrLaunchDenied):
			return fmt.Errorf("%s is not allowed by the launcher policy", args[0])
		case errors.Is(err, errors.ErrNoLaunchTarget):
			return fmt.Errorf("no launchable entry found for %s", args[0])
		default:
			return err
		}
	}

	fmt.Fprintf(out, "Launched %s (%s)\n", outcome.ApplicationID, outcome.Strategy)
	return nil
}
