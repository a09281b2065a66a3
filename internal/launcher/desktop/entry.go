// Package desktop implements launcher.Platform on top of XDG desktop
// entries.
//
// An application id maps to the desktop file id "<id>.desktop", looked up
// in the configured application directories in order; the first match
// wins, as on a freedesktop system.
package desktop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"gopkg.in/ini.v1"
)

const (
	entrySection = "Desktop Entry"
	entryExt     = ".desktop"

	typeApplication = "Application"

	// keyPackage names the application id an entry belongs to when its
	// file id differs from it.
	keyPackage = "X-Package"
)

// Entry is the subset of a desktop entry the launcher needs.
type Entry struct {
	ID         string // desktop file id without the extension
	Path       string
	Type       string
	Name       string
	Exec       string
	Icon       string
	Package    string
	Categories []string
	Hidden     bool
	NoDisplay  bool
}

// Launchable reports whether the entry can be started at all.
func (e Entry) Launchable() bool {
	return e.Type == typeApplication && !e.Hidden && strings.TrimSpace(e.Exec) != ""
}

// Visible reports whether the entry would appear in an application menu.
func (e Entry) Visible() bool {
	return e.Launchable() && !e.NoDisplay
}

// ParseEntry reads the desktop entry at path.
func ParseEntry(path string) (Entry, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return Entry{}, fmt.Errorf("parse %s: %w", path, err)
	}

	sec, err := f.GetSection(entrySection)
	if err != nil {
		return Entry{}, fmt.Errorf("parse %s: missing [%s] group", path, entrySection)
	}

	e := Entry{
		ID:        strings.TrimSuffix(filepath.Base(path), entryExt),
		Path:      path,
		Type:      sec.Key("Type").String(),
		Name:      sec.Key("Name").String(),
		Exec:      sec.Key("Exec").String(),
		Icon:      sec.Key("Icon").String(),
		Package:   sec.Key(keyPackage).String(),
		Hidden:    sec.Key("Hidden").MustBool(false),
		NoDisplay: sec.Key("NoDisplay").MustBool(false),
	}
	for _, c := range strings.Split(sec.Key("Categories").String(), ";") {
		if c = strings.TrimSpace(c); c != "" {
			e.Categories = append(e.Categories, c)
		}
	}
	return e, nil
}

// Command returns the argv for the entry's Exec line. Field codes are
// expanded or dropped since the launcher never passes files or URLs.
func (e Entry) Command() ([]string, error) {
	words, err := shellquote.Split(e.Exec)
	if err != nil {
		return nil, fmt.Errorf("exec line of %s: %w", e.ID, err)
	}

	var argv []string
	for _, w := range words {
		switch w {
		case "%f", "%F", "%u", "%U", "%d", "%D", "%n", "%N", "%v", "%m":
			continue
		case "%i":
			if e.Icon != "" {
				argv = append(argv, "--icon", e.Icon)
			}
			continue
		}
		argv = append(argv, expandFieldCodes(w, e))
	}

	if len(argv) == 0 {
		return nil, fmt.Errorf("exec line of %s is empty", e.ID)
	}
	return argv, nil
}

func expandFieldCodes(word string, e Entry) string {
	if !strings.Contains(word, "%") {
		return word
	}

	var b strings.Builder
	for i := 0; i < len(word); i++ {
		if word[i] != '%' || i+1 == len(word) {
			b.WriteByte(word[i])
			continue
		}
		i++
		switch word[i] {
		case '%':
			b.WriteByte('%')
		case 'c':
			b.WriteString(e.Name)
		case 'k':
			b.WriteString(e.Path)
		}
	}
	return b.String()
}

// DefaultApplicationDirs returns the XDG application directories in
// precedence order.
func DefaultApplicationDirs() []string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}

	var dirs []string
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	for _, d := range filepath.SplitList(dataDirs) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
	}
	return dirs
}
