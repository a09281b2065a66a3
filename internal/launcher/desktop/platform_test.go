package desktop

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/callbridge/internal/intent"
	"github.com/Iron-Ham/callbridge/internal/launcher"
	"github.com/Iron-Ham/callbridge/internal/testutil"
)

type recordingRunner struct {
	mu    sync.Mutex
	argvs [][]string
	err   error
}

func (r *recordingRunner) run(_ context.Context, argv []string, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.argvs = append(r.argvs, argv)
	return r.err
}

func TestParseEntry(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDesktopEntry(t, dir, "org.example.mail",
		"# comment",
		"Type=Application",
		"Name=Mail",
		"Name[de]=Post",
		"Exec=example-mail --new-window %U",
		"Icon=mail",
		"Categories=Network;Email;",
		"NoDisplay=false",
	)

	e, err := ParseEntry(path)
	if err != nil {
		t.Fatalf("ParseEntry failed: %v", err)
	}

	want := Entry{
		ID:         "org.example.mail",
		Path:       path,
		Type:       "Application",
		Name:       "Mail",
		Exec:       "example-mail --new-window %U",
		Icon:       "mail",
		Categories: []string{"Network", "Email"},
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
	if !e.Visible() {
		t.Error("entry should be visible")
	}
}

func TestParseEntry_MissingGroup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.desktop")
	if err := os.WriteFile(path, []byte("[Other]\nType=Application\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseEntry(path); err == nil {
		t.Error("expected error for file without [Desktop Entry]")
	}
}

func TestEntry_Command(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		want    []string
		wantErr bool
	}{
		{"plain", Entry{Exec: "editor"}, []string{"editor"}, false},
		{"file codes dropped", Entry{Exec: "viewer %f --flag %U"}, []string{"viewer", "--flag"}, false},
		{"quoted", Entry{Exec: `run 'two words' "and more"`}, []string{"run", "two words", "and more"}, false},
		{"icon", Entry{Exec: "app %i", Icon: "app-icon"}, []string{"app", "--icon", "app-icon"}, false},
		{"icon absent", Entry{Exec: "app %i"}, []string{"app"}, false},
		{"name and path", Entry{Exec: "app --title=%c --from=%k 100%%", Name: "App", Path: "/a.desktop"},
			[]string{"app", "--title=App", "--from=/a.desktop", "100%"}, false},
		{"unterminated quote", Entry{Exec: "app 'oops"}, nil, true},
		{"only codes", Entry{Exec: "%U"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.entry.Command()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Command() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("argv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLaunchEntry(t *testing.T) {
	user := filepath.Join(t.TempDir(), "user")
	system := filepath.Join(t.TempDir(), "system")

	testutil.WriteDesktopEntry(t, user, "org.example.mail", "Type=Application", "Exec=user-mail")
	testutil.WriteDesktopEntry(t, system, "org.example.mail", "Type=Application", "Exec=system-mail")
	testutil.WriteDesktopEntry(t, system, "org.example.hidden", "Type=Application", "Exec=x", "Hidden=true")
	testutil.WriteDesktopEntry(t, system, "org.example.link", "Type=Link", "URL=https://example.org")
	testutil.WriteDesktopEntry(t, system, "org.example.noexec", "Type=Application")

	p := New([]string{user, system})
	ctx := context.Background()

	in, found, err := p.LaunchEntry(ctx, "org.example.mail")
	if err != nil || !found {
		t.Fatalf("LaunchEntry = %v, %v", found, err)
	}
	want := intent.NewLauncherMain("org.example.mail")
	want.Component = "org.example.mail"
	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("intent mismatch (-want +got):\n%s", diff)
	}

	e, _, _ := p.Lookup("org.example.mail")
	if e.Exec != "user-mail" {
		t.Errorf("earlier directory should win, got Exec %q", e.Exec)
	}

	for _, id := range []string{"org.example.hidden", "org.example.link", "org.example.noexec", "org.example.absent", "../escape"} {
		if _, found, err := p.LaunchEntry(ctx, id); found || err != nil {
			t.Errorf("LaunchEntry(%q) = %v, %v; want not found", id, found, err)
		}
	}
}

func TestQueryActivities(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDesktopEntry(t, dir, "org.example.notes.Editor", "Type=Application", "Name=Notes", "Exec=notes")
	testutil.WriteDesktopEntry(t, dir, "notes-helper", "Type=Application", "Name=Helper", "Exec=helper", "X-Package=org.example.notes")
	testutil.WriteDesktopEntry(t, dir, "org.example.notes.Daemon", "Type=Application", "Exec=notesd", "NoDisplay=true")
	testutil.WriteDesktopEntry(t, dir, "org.example.notesplus", "Type=Application", "Exec=plus")
	testutil.WriteDesktopEntry(t, dir, "org.example.notes.Other", "Type=Application", "Exec=other", "X-Package=org.example.other")

	p := New([]string{dir})
	ctx := context.Background()

	got, err := p.QueryActivities(ctx, intent.NewLauncherMain("org.example.notes"))
	if err != nil {
		t.Fatalf("QueryActivities failed: %v", err)
	}
	want := []launcher.Activity{
		{ID: "notes-helper", Name: "Helper"},
		{ID: "org.example.notes.Editor", Name: "Notes"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("activities mismatch (-want +got):\n%s", diff)
	}

	send := intent.NewShareText("x")
	send.Package = "org.example.notes"
	if got, _ := p.QueryActivities(ctx, send); len(got) != 0 {
		t.Errorf("non-main intent resolved %v", got)
	}
}

func TestStart(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDesktopEntry(t, dir, "org.example.notes.Editor", "Type=Application", "Name=Notes", "Exec=notes --new %F")

	t.Run("synthesized intent starts first activity", func(t *testing.T) {
		r := &recordingRunner{}
		p := New([]string{dir}, WithRunner(r.run))

		if err := p.Start(context.Background(), intent.NewLauncherMain("org.example.notes")); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if diff := cmp.Diff([][]string{{"notes", "--new"}}, r.argvs); diff != "" {
			t.Errorf("argv mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unresolvable intent fails without running", func(t *testing.T) {
		r := &recordingRunner{}
		p := New([]string{dir}, WithRunner(r.run))

		if err := p.Start(context.Background(), intent.NewLauncherMain("org.example.none")); err == nil {
			t.Error("expected error")
		}
		if len(r.argvs) != 0 {
			t.Errorf("runner called: %v", r.argvs)
		}
	})

	t.Run("runner error is reported", func(t *testing.T) {
		r := &recordingRunner{err: exec.ErrNotFound}
		p := New([]string{dir}, WithRunner(r.run))

		in := intent.NewLauncherMain("org.example.notes")
		in.Component = "org.example.notes.Editor"
		if err := p.Start(context.Background(), in); err == nil {
			t.Error("expected error")
		}
	})
}

func TestStart_RealProcess(t *testing.T) {
	sh := testutil.LookPathOrSkip(t, "sh")

	dir := t.TempDir()
	marker := filepath.Join(dir, "started")
	testutil.WriteDesktopEntry(t, dir, "org.example.touch", "Type=Application", "Exec="+sh+" -c 'echo ok > "+marker+"'")

	svc := launcher.NewService(New([]string{dir}))
	if !svc.Launch(context.Background(), "org.example.touch") {
		t.Fatal("Launch returned false")
	}

	testutil.WaitFor(t, 5*time.Second, "launched process never ran", func() bool {
		data, err := os.ReadFile(marker)
		return err == nil && strings.TrimSpace(string(data)) == "ok"
	})
}

func TestDefaultApplicationDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/home/u/.local/share")
	t.Setenv("XDG_DATA_DIRS", "/opt/share:/usr/share")

	want := []string{
		"/home/u/.local/share/applications",
		"/opt/share/applications",
		"/usr/share/applications",
	}
	if diff := cmp.Diff(want, DefaultApplicationDirs()); diff != "" {
		t.Errorf("dirs mismatch (-want +got):\n%s", diff)
	}
}
