// Package launcher brings another installed application to the foreground
// by its application identifier.
//
// A launch walks an ordered list of strategies against the host Platform
// and stops at the first one that resolves a target:
//
//  1. direct-entry: the application's own launch entry.
//  2. synthesized-main: a main/launcher intent scoped to the application,
//     used only when the platform reports at least one matching activity.
//
// At most one target is started per launch and nothing is retried. Host
// failures are reported by Attempt as errors; Launch is the boundary form
// that logs them and reports false.
package launcher
