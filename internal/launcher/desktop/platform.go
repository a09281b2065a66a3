package desktop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Iron-Ham/callbridge/internal/intent"
	"github.com/Iron-Ham/callbridge/internal/launcher"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

// Runner starts argv. The default runner starts a detached process.
type Runner func(ctx context.Context, argv []string, detach bool) error

// Option configures a Platform.
type Option func(*Platform)

// WithLogger sets the platform logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Platform) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(p *Platform) {
		if r != nil {
			p.run = r
		}
	}
}

// Platform resolves and starts desktop entries.
type Platform struct {
	dirs   []string
	logger *logging.Logger
	run    Runner
}

var _ launcher.Platform = (*Platform)(nil)

// New creates a Platform searching dirs in order. With no dirs the XDG
// defaults are used.
func New(dirs []string, opts ...Option) *Platform {
	if len(dirs) == 0 {
		dirs = DefaultApplicationDirs()
	}

	p := &Platform{
		dirs:   dirs,
		logger: logging.NopLogger(),
		run:    startProcess,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("desktop")
	return p
}

// Dirs returns the searched application directories.
func (p *Platform) Dirs() []string {
	return p.dirs
}

// Lookup finds the entry with the given desktop file id.
func (p *Platform) Lookup(id string) (Entry, bool, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return Entry{}, false, nil
	}

	for _, dir := range p.dirs {
		path := filepath.Join(dir, id+entryExt)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Entry{}, false, err
		}
		e, err := ParseEntry(path)
		if err != nil {
			return Entry{}, false, err
		}
		return e, true, nil
	}
	return Entry{}, false, nil
}

// Entries returns every parseable entry, keyed by file id with earlier
// directories shadowing later ones, sorted by id.
func (p *Platform) Entries() ([]Entry, error) {
	seen := make(map[string]bool)
	var entries []Entry

	for _, dir := range p.dirs {
		files, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != entryExt {
				continue
			}
			id := strings.TrimSuffix(f.Name(), entryExt)
			if seen[id] {
				continue
			}
			seen[id] = true

			e, err := ParseEntry(filepath.Join(dir, f.Name()))
			if err != nil {
				p.logger.Debug("skipping unparseable entry", "file", f.Name(), "error", err.Error())
				continue
			}
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// LaunchEntry implements launcher.Platform.
func (p *Platform) LaunchEntry(_ context.Context, appID string) (intent.Intent, bool, error) {
	e, found, err := p.Lookup(appID)
	if err != nil || !found || !e.Launchable() {
		return intent.Intent{}, false, err
	}

	in := intent.NewLauncherMain(appID)
	in.Component = e.ID
	return in, true, nil
}

// QueryActivities implements launcher.Platform. Only main/launcher
// intents resolve; an entry matches when its X-Package equals the intent's
// package or its file id lies under the package's dotted namespace.
func (p *Platform) QueryActivities(_ context.Context, in intent.Intent) ([]launcher.Activity, error) {
	if in.Action != intent.ActionMain || in.Package == "" {
		return nil, nil
	}
	if len(in.Categories) > 0 && !in.HasCategory(intent.CategoryLauncher) {
		return nil, nil
	}

	entries, err := p.Entries()
	if err != nil {
		return nil, err
	}

	var out []launcher.Activity
	for _, e := range entries {
		if !e.Visible() || !belongsTo(e, in.Package) {
			continue
		}
		if in.Component != "" && e.ID != in.Component {
			continue
		}
		out = append(out, launcher.Activity{ID: e.ID, Name: e.Name})
	}
	return out, nil
}

func belongsTo(e Entry, pkg string) bool {
	if e.Package != "" {
		return e.Package == pkg
	}
	return e.ID == pkg || strings.HasPrefix(e.ID, pkg+".")
}

// Start implements launcher.Platform. An intent naming a component starts
// that entry; otherwise the first matching activity is started.
func (p *Platform) Start(ctx context.Context, in intent.Intent) error {
	e, err := p.resolve(ctx, in)
	if err != nil {
		return err
	}

	argv, err := e.Command()
	if err != nil {
		return err
	}

	detach := in.Flags.Has(intent.FlagNewTask)
	p.logger.Info("starting application", "entry", e.ID, "argv0", argv[0], "detach", detach)
	if err := p.run(ctx, argv, detach); err != nil {
		return fmt.Errorf("start %s: %w", e.ID, err)
	}
	return nil
}

func (p *Platform) resolve(ctx context.Context, in intent.Intent) (Entry, error) {
	id := in.Component
	if id == "" {
		activities, err := p.QueryActivities(ctx, in)
		if err != nil {
			return Entry{}, err
		}
		if len(activities) == 0 {
			return Entry{}, fmt.Errorf("no activity for %s", in)
		}
		id = activities[0].ID
	}

	e, found, err := p.Lookup(id)
	if err != nil {
		return Entry{}, err
	}
	if !found || !e.Launchable() {
		return Entry{}, fmt.Errorf("entry %s is not launchable", id)
	}
	return e, nil
}

// startProcess starts argv without waiting for it. A detached process runs
// in its own session so it outlives the bridge.
func startProcess(_ context.Context, argv []string, detach bool) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	if detach {
		setDetached(cmd)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
