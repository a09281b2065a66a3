package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	if errs := Default().Validate(); len(errs) != 0 {
		t.Errorf("Default config should be valid, got: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"prefix whitespace", func(c *Config) { c.Bridge.ChannelPrefix = "com.example /" }, "bridge.channel_prefix"},
		{"no mime types", func(c *Config) { c.Share.MimeTypes = nil }, "share.mime_types"},
		{"bad mime type", func(c *Config) { c.Share.MimeTypes = []string{"text/plain", "plain"} }, "share.mime_types[1]"},
		{"inbox null byte", func(c *Config) { c.Share.InboxDir = "in\x00box" }, "share.inbox_dir"},
		{"bad allow glob", func(c *Config) { c.Launcher.Allow = []string{"[oops"} }, "launcher.allow[0]"},
		{"bad deny glob", func(c *Config) { c.Launcher.Deny = []string{"ok", "[oops"} }, "launcher.deny[1]"},
		{"app dir too long", func(c *Config) { c.Launcher.ApplicationDirs = []string{strings.Repeat("a", 5000)} }, "launcher.application_dirs[0]"},
		{"bad mode", func(c *Config) { c.Transport.Mode = "tcp" }, "transport.mode"},
		{"bad listen addr", func(c *Config) { c.Transport.ListenAddr = "localhost" }, "transport.listen_addr"},
		{"bad path", func(c *Config) { c.Transport.Path = "bridge" }, "transport.path"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"zero size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
		{"huge size", func(c *Config) { c.Logging.MaxSizeMB = 5000 }, "logging.max_size_mb"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
		{"data dir null byte", func(c *Config) { c.Paths.DataDir = "\x00" }, "paths.data_dir"},
		{"database null byte", func(c *Config) { c.CallLog.Database = "calls\x00.db" }, "calllog.database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Transport.Mode = "tcp"
	cfg.Logging.Level = "loud"
	cfg.Logging.MaxBackups = -2

	if errs := cfg.Validate(); len(errs) != 3 {
		t.Errorf("Validate() returned %d errors, want 3: %v", len(errs), errs)
	}
}
