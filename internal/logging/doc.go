// Package logging provides structured logging for the bridge process.
//
// The package wraps Go's log/slog to emit JSON lines. Child loggers carry
// persistent attributes so every line written while serving a command can
// be traced back to the component, channel and method that produced it.
//
// # Basic Usage
//
//	logger, err := logging.NewFileLogger("/var/lib/callbridge/callbridge.log", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithComponent("launcher").WithChannel("com.example.calllog/launcher")
//	log.Info("launch requested", "application_id", "org.example.app")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"launch requested","component":"launcher","channel":"com.example.calllog/launcher","application_id":"org.example.app"}
//
// # Log Rotation
//
// [RotatingWriter] rotates the log file once it grows past MaxSizeMB,
// keeping MaxBackups numbered backups (callbridge.log.1 is the newest).
// With Compress set, rotated files are gzipped in the background.
//
// # Testing
//
// Use [NopLogger] to discard output, or [New] with a bytes.Buffer to
// assert on the emitted JSON.
package logging
