package inbox

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/Iron-Ham/callbridge/internal/event"
	"github.com/Iron-Ham/callbridge/internal/intent"
)

func collect(bus *event.Bus) <-chan event.ActivationReceivedEvent {
	ch := make(chan event.ActivationReceivedEvent, 16)
	bus.Subscribe(event.TypeActivationReceived, func(e event.Event) {
		ch <- e.(event.ActivationReceivedEvent)
	})
	return ch
}

func waitActivation(t *testing.T, ch <-chan event.ActivationReceivedEvent) event.ActivationReceivedEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for activation")
		return event.ActivationReceivedEvent{}
	}
}

func TestWatcher_PicksUpNewFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	bus := event.NewBus(nil)
	got := collect(bus)

	w, err := New(dir, bus, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	path, err := WriteText(dir, "shared words\n")
	if err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	ev := waitActivation(t, got)
	if ev.Source != Source || ev.ActivationID == "" {
		t.Errorf("event = %+v", ev)
	}
	if text, ok := ev.Intent.Text([]string{intent.MimeTextPlain}); !ok || text != "shared words" {
		t.Errorf("intent text = %q, %v", text, ok)
	}

	// The file is consumed once parsed.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("activation file was not removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcher_StartDrainsExistingFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	in := intent.NewLauncherMain("org.example.app")
	if _, err := Write(dir, in); err != nil {
		t.Fatal(err)
	}

	bus := event.NewBus(nil)
	got := collect(bus)

	w, err := New(dir, bus)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()

	ev := waitActivation(t, got)
	if ev.Intent.Action != intent.ActionMain || ev.Intent.Package != "org.example.app" {
		t.Errorf("intent = %s", ev.Intent)
	}
}

func TestDrain(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"001.txt":          "first",
		"002.json":         `{"action":"send","type":"text/plain","extras":{"text":"second"}}`,
		"003.json":         `{"type":"text/plain"}`,
		"004.json":         `not json`,
		"notes.md":         "ignored",
		".incoming-123":    "ignored",
		"005.txt.rejected": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	bus := event.NewBus(nil)
	got := collect(bus)

	w, err := New(dir, bus)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	n, err := w.Drain()
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Drain accepted %d, want 2", n)
	}

	var texts []string
	for i := 0; i < 2; i++ {
		ev := waitActivation(t, got)
		text, _ := ev.Intent.Extra(intent.ExtraText)
		texts = append(texts, text)
	}
	if texts[0] != "first" || texts[1] != "second" {
		t.Errorf("texts = %v, want [first second]", texts)
	}

	for name, wantExists := range map[string]bool{
		"001.txt":           false,
		"002.json":          false,
		"003.json":          false,
		"003.json.rejected": true,
		"004.json.rejected": true,
		"notes.md":          true,
		".incoming-123":     true,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != wantExists {
			t.Errorf("%s exists = %v, want %v", name, exists, wantExists)
		}
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "inbox")
	in := intent.NewShareText("hello")

	path, err := Write(dir, in)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("path = %q, want .json file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := intent.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text, ok := decoded.Text([]string{intent.MimeTextPlain}); !ok || text != "hello" {
		t.Errorf("decoded text = %q, %v", text, ok)
	}
}
