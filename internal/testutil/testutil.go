// Package testutil provides helpers shared by callbridge tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// IsolateEnv points HOME and the XDG base directories at a fresh temporary
// directory so tests never touch the user's configuration or data. It
// returns the temporary root.
func IsolateEnv(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_DATA_DIRS", filepath.Join(root, "share"))
	return root
}

// WriteDesktopEntry writes <dir>/<id>.desktop with a [Desktop Entry] group
// holding lines, creating dir if needed. It returns the file path.
func WriteDesktopEntry(t *testing.T, dir, id string, lines ...string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	content := "[Desktop Entry]\n" + strings.Join(lines, "\n") + "\n"
	path := filepath.Join(dir, id+".desktop")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WaitFor polls cond every 10ms until it returns true, failing the test
// with msg once timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v: %s", timeout, msg)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// LookPathOrSkip returns the path of the named executable, skipping the
// test if it is not installed.
func LookPathOrSkip(t *testing.T, name string) string {
	t.Helper()

	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not found in PATH, skipping test", name)
	}
	return path
}
