package intent

import "testing"

func TestText(t *testing.T) {
	plain := []string{MimeTextPlain}

	tests := []struct {
		name   string
		in     Intent
		want   string
		wantOK bool
	}{
		{"share text", NewShareText("hello"), "hello", true},
		{"mime case-insensitive", Intent{Action: ActionSend, MimeType: "Text/Plain", Extras: map[string]string{ExtraText: "x"}}, "x", true},
		{"wrong action", Intent{Action: ActionMain, MimeType: MimeTextPlain, Extras: map[string]string{ExtraText: "x"}}, "", false},
		{"wrong mime", Intent{Action: ActionSend, MimeType: "image/png", Extras: map[string]string{ExtraText: "x"}}, "", false},
		{"missing extra", Intent{Action: ActionSend, MimeType: MimeTextPlain}, "", false},
		{"empty text qualifies", NewShareText(""), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.Text(plain)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Text() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewLauncherMain(t *testing.T) {
	in := NewLauncherMain("org.example.app")

	if in.Action != ActionMain {
		t.Errorf("Action = %q, want %q", in.Action, ActionMain)
	}
	if in.Package != "org.example.app" {
		t.Errorf("Package = %q", in.Package)
	}
	if !in.HasCategory(CategoryLauncher) {
		t.Error("expected launcher category")
	}
	if !in.Flags.Has(FlagNewTask) {
		t.Error("expected new-task flag")
	}
	if got, want := in.String(), "intent{act=main pkg=org.example.app cat=[launcher] flg=0x1}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDecode(t *testing.T) {
	in, err := Decode([]byte(`{"action":"send","type":"text/plain","extras":{"text":"hi"}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if text, ok := in.Text([]string{MimeTextPlain}); !ok || text != "hi" {
		t.Errorf("Text() = (%q, %v)", text, ok)
	}

	if _, err := Decode([]byte(`{"type":"text/plain"}`)); err == nil {
		t.Error("expected error for missing action")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
