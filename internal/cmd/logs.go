package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/callbridge/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View bridge logs",
	Long: `View and filter the bridge log file.

Examples:
  # Show the last 50 lines
  callbridge logs

  # Show everything logged by the launcher channel
  callbridge logs --component launcher -n 0

  # Follow logs in real-time
  callbridge logs -f

  # Filter by log level
  callbridge logs --level warn

  # Show logs from the last hour
  callbridge logs --since 1h

  # Search for specific patterns
  callbridge logs --grep "denied|failed"`,
	RunE: runLogs,
}

var (
	logsComponent string
	logsTail      int
	logsFollow    bool
	logsLevel     string
	logsSince     string
	logsGrep      string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Only show entries from this component")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")
}

// logEntry is one parsed line of the JSON log file.
type logEntry struct {
	Time      time.Time
	Level     string
	Msg       string
	Component string
	Channel   string
	Method    string
	Extra     map[string]any
}

// parseLogEntry decodes a JSON log line. Attributes other than the
// standard slog keys and the bridge context keys land in Extra.
func parseLogEntry(line []byte) (*logEntry, error) {
	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, err
	}

	take := func(key string) string {
		v, _ := fields[key].(string)
		delete(fields, key)
		return v
	}

	e := &logEntry{
		Level:     take("level"),
		Msg:       take("msg"),
		Component: take("component"),
		Channel:   take("channel"),
		Method:    take("method"),
	}
	if ts := take("time"); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("bad time %q: %w", ts, err)
		}
		e.Time = t
	}
	if len(fields) > 0 {
		e.Extra = fields
	}
	return e, nil
}

// ANSI escape sequences for terminal output
const (
	ansiReset = "\033[0m"
	ansiGray  = "\033[90m"
	ansiCyan  = "\033[36m"
)

type levelStyle struct {
	priority int
	color    string
}

var levelStyles = map[string]levelStyle{
	logging.LevelDebug: {0, ansiGray},
	logging.LevelInfo:  {1, "\033[34m"},
	logging.LevelWarn:  {2, "\033[33m"},
	logging.LevelError: {3, "\033[31m"},
}

// levelPriority orders levels for filtering; unknown levels sort below debug.
func levelPriority(level string) int {
	if st, ok := levelStyles[strings.ToUpper(level)]; ok {
		return st.priority
	}
	return -1
}

func formatLogEntry(entry *logEntry) string {
	var sb strings.Builder

	color := ansiReset
	if st, ok := levelStyles[strings.ToUpper(entry.Level)]; ok {
		color = st.color
	}
	fmt.Fprintf(&sb, "%s[%s]%s %s[%s]%s %s",
		ansiGray, entry.Time.Format("15:04:05.000"), ansiReset,
		color, strings.ToUpper(entry.Level), ansiReset,
		entry.Msg)

	attr := func(key, value string) {
		fmt.Fprintf(&sb, " %s%s=%s%s", ansiCyan, key, ansiReset, value)
	}
	if entry.Component != "" {
		attr("component", entry.Component)
	}
	if entry.Channel != "" {
		attr("channel", entry.Channel)
	}
	if entry.Method != "" {
		attr("method", entry.Method)
	}

	keys := make([]string, 0, len(entry.Extra))
	for key := range entry.Extra {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		attr(key, fmt.Sprint(entry.Extra[key]))
	}

	return sb.String()
}

// logFilter holds the criteria an entry must meet to be shown.
type logFilter struct {
	minLevel  int
	component string
	since     time.Time
	grep      *regexp.Regexp
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	logPath := cfg.LogFile()
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No logs found.")
		fmt.Fprintln(out, "Logs are stored at:", logPath)
		return nil
	}

	filter := logFilter{minLevel: -1, component: logsComponent}
	if logsLevel != "" {
		filter.minLevel = levelPriority(logging.ParseLevel(logsLevel))
	}

	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.since = time.Now().Add(-duration)
	}

	if logsGrep != "" {
		filter.grep, err = regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
	}

	if logsFollow {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return followLogs(ctx, out, logPath, filter)
	}

	return displayLogs(out, logPath, logsTail, filter)
}

// displayLogs reads the log file and displays filtered entries
func displayLogs(out io.Writer, logPath string, tail int, filter logFilter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)

	// Increase buffer size for potentially long log lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		entry, err := parseLogEntry([]byte(line))
		if err != nil {
			// Not one of ours; show it unchanged
			entries = append(entries, line)
			continue
		}

		if filter.passes(entry) {
			entries = append(entries, formatLogEntry(entry))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}

	for _, entry := range entries {
		fmt.Fprintln(out, entry)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}

	return nil
}

// followLogs implements tail -f behavior for the log file until ctx ends
func followLogs(ctx context.Context, out io.Writer, logPath string, filter logFilter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Fprintf(out, "Following logs... (Ctrl+C to stop)\n\n")

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// No new data, wait briefly and try again
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(100 * time.Millisecond):
				}
				continue
			}
			return fmt.Errorf("error reading log file: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		entry, err := parseLogEntry([]byte(line))
		if err != nil {
			fmt.Fprintln(out, line)
			continue
		}

		if filter.passes(entry) {
			fmt.Fprintln(out, formatLogEntry(entry))
		}
	}
}

// passes checks if a log entry meets all filter criteria
func (f logFilter) passes(entry *logEntry) bool {
	if f.minLevel >= 0 && levelPriority(entry.Level) < f.minLevel {
		return false
	}

	if f.component != "" && entry.Component != f.component {
		return false
	}

	if !f.since.IsZero() && entry.Time.Before(f.since) {
		return false
	}

	// Grep searches the message and extra fields
	if f.grep != nil {
		parts := []string{entry.Msg}
		for _, v := range entry.Extra {
			parts = append(parts, fmt.Sprint(v))
		}
		if !f.grep.MatchString(strings.Join(parts, " ")) {
			return false
		}
	}

	return true
}
