package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "transport.listen_addr")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBridge()...)
	errors = append(errors, c.validateShare()...)
	errors = append(errors, c.validateLauncher()...)
	errors = append(errors, c.validateTransport()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validatePaths()...)

	return errors
}

func (c *Config) validateBridge() []ValidationError {
	var errors []ValidationError

	prefix := c.Bridge.ChannelPrefix
	if strings.ContainsFunc(prefix, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }) {
		errors = append(errors, ValidationError{
			Field:   "bridge.channel_prefix",
			Value:   prefix,
			Message: "must not contain whitespace",
		})
	}

	return errors
}

func (c *Config) validateShare() []ValidationError {
	var errors []ValidationError

	if len(c.Share.MimeTypes) == 0 {
		errors = append(errors, ValidationError{
			Field:   "share.mime_types",
			Value:   c.Share.MimeTypes,
			Message: "must list at least one MIME type",
		})
	}
	for i, m := range c.Share.MimeTypes {
		typ, sub, ok := strings.Cut(m, "/")
		if !ok || typ == "" || sub == "" || strings.ContainsAny(m, " \t") {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("share.mime_types[%d]", i),
				Value:   m,
				Message: "must be a type/subtype MIME type",
			})
		}
	}

	errors = append(errors, validatePath("share.inbox_dir", c.Share.InboxDir)...)

	return errors
}

func (c *Config) validateLauncher() []ValidationError {
	var errors []ValidationError

	for _, list := range []struct {
		field    string
		patterns []string
	}{
		{"launcher.allow", c.Launcher.Allow},
		{"launcher.deny", c.Launcher.Deny},
	} {
		for i, p := range list.patterns {
			if _, err := glob.Compile(p); err != nil {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("%s[%d]", list.field, i),
					Value:   p,
					Message: fmt.Sprintf("invalid glob pattern: %v", err),
				})
			}
		}
	}

	for i, dir := range c.Launcher.ApplicationDirs {
		errors = append(errors, validatePath(fmt.Sprintf("launcher.application_dirs[%d]", i), dir)...)
	}

	return errors
}

func (c *Config) validateTransport() []ValidationError {
	var errors []ValidationError

	if !IsValidTransportMode(c.Transport.Mode) {
		errors = append(errors, ValidationError{
			Field:   "transport.mode",
			Value:   c.Transport.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidTransportModes(), ", ")),
		})
	}

	// Checked in every mode.
	if _, _, err := net.SplitHostPort(c.Transport.ListenAddr); err != nil {
		errors = append(errors, ValidationError{
			Field:   "transport.listen_addr",
			Value:   c.Transport.ListenAddr,
			Message: "must be host:port",
		})
	}

	if !strings.HasPrefix(c.Transport.Path, "/") {
		errors = append(errors, ValidationError{
			Field:   "transport.path",
			Value:   c.Transport.Path,
			Message: "must start with /",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	errors = append(errors, validatePath("paths.data_dir", c.Paths.DataDir)...)
	errors = append(errors, validatePath("calllog.database", c.CallLog.Database)...)

	return errors
}

// validatePath checks an optional path setting for characters no
// filesystem accepts.
func validatePath(field, path string) []ValidationError {
	if path == "" {
		return nil
	}

	var errors []ValidationError

	// Check for null bytes which are invalid in paths
	if strings.ContainsRune(path, '\x00') {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   path,
			Message: "path contains invalid null character",
		})
	}

	// Reasonable path length limit (most filesystems have limits around 4096)
	const maxPathLength = 4096
	if len(path) > maxPathLength {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   path,
			Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
		})
	}

	return errors
}
