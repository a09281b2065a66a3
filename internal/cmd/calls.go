package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/callbridge/internal/calllog"
	"github.com/Iron-Ham/callbridge/internal/calllog/sqlitestore"
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Manage the host call history",
	Long: `Manage the call history the bridge serves on the call_log channel.

Records live in the SQLite database configured by calllog.database.`,
}

var callsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one call record",
	Long: `Add one call record.

Examples:
  callbridge calls add --number 5551234 --type incoming --duration 42
  callbridge calls add --number 5550000 --date 1700000000000 --type 3`,
	Args: cobra.NoArgs,
	RunE: runCallsAdd,
}

var callsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import call records from CSV",
	Long: `Import call records from a CSV file with a header row naming the
columns number, date, type and duration. date is milliseconds since the
Unix epoch; type is a numeric code or a name such as "missed".`,
	Args: cobra.ExactArgs(1),
	RunE: runCallsImport,
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List call records",
	Long:  `List call records at or after --since, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runCallsList,
}

var (
	callsNumber   string
	callsDate     int64
	callsType     string
	callsDuration int
	callsSince    int64
	callsJSON     bool
)

func init() {
	rootCmd.AddCommand(callsCmd)
	callsCmd.AddCommand(callsAddCmd)
	callsCmd.AddCommand(callsImportCmd)
	callsCmd.AddCommand(callsListCmd)

	callsAddCmd.Flags().StringVar(&callsNumber, "number", "", "Phone number")
	callsAddCmd.Flags().Int64Var(&callsDate, "date", 0, "Call time in epoch milliseconds (default: now)")
	callsAddCmd.Flags().StringVar(&callsType, "type", "incoming", "Call type name or numeric code")
	callsAddCmd.Flags().IntVar(&callsDuration, "duration", 0, "Duration in seconds")

	callsListCmd.Flags().Int64Var(&callsSince, "since", 0, "Only records at or after this epoch-millisecond timestamp")
	callsListCmd.Flags().BoolVar(&callsJSON, "json", false, "Print records as JSON")
}

// openCallStore opens the configured call database, creating its directory.
func openCallStore() (*sqlitestore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	path := cfg.DatabasePath()
	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return sqlitestore.Open(path)
}

// parseCallTypeFlag accepts either a numeric code or a call-type name.
func parseCallTypeFlag(s string) (calllog.CallType, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return calllog.CallType(n), nil
	}
	return calllog.ParseCallType(s)
}

func runCallsAdd(cmd *cobra.Command, args []string) error {
	if callsDuration < 0 {
		return fmt.Errorf("--duration must be non-negative")
	}
	callType, err := parseCallTypeFlag(callsType)
	if err != nil {
		return err
	}
	date := callsDate
	if date == 0 {
		date = time.Now().UnixMilli()
	}

	store, err := openCallStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec := calllog.CallRecord{
		Number:          callsNumber,
		TimestampMillis: date,
		Type:            callType,
		DurationSeconds: callsDuration,
	}
	if err := store.Insert(context.Background(), rec); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s call from %q at %d\n", callType, rec.Number, rec.TimestampMillis)
	return nil
}

func runCallsImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	store, err := openCallStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportCSV(context.Background(), f)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", n, store.Path())
	return nil
}

func runCallsList(cmd *cobra.Command, args []string) error {
	if callsSince < 0 {
		return fmt.Errorf("--since must be non-negative")
	}

	store, err := openCallStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.CallsSince(context.Background(), callsSince)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if callsJSON {
		if records == nil {
			records = []calllog.CallRecord{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No calls found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tNUMBER\tTYPE\tDURATION")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%ds\n",
			time.UnixMilli(r.TimestampMillis).Format(time.DateTime),
			r.Number, r.Type, r.DurationSeconds)
	}
	return tw.Flush()
}
