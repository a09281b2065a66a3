package launcher

import "testing"

func TestPolicy(t *testing.T) {
	tests := []struct {
		name  string
		allow []string
		deny  []string
		id    string
		want  bool
	}{
		{"allow all", []string{"*"}, nil, "org.example.app", true},
		{"empty allow denies", nil, nil, "org.example.app", false},
		{"prefix allowed", []string{"org.example.*"}, nil, "org.example.app.debug", true},
		{"prefix not matched", []string{"org.example.*"}, nil, "com.example.app", false},
		{"deny wins", []string{"*"}, []string{"*.debug"}, "org.example.app.debug", false},
		{"alternatives", []string{"{org,com}.example.app"}, nil, "com.example.app", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.allow, tt.deny)
			if err != nil {
				t.Fatalf("NewPolicy failed: %v", err)
			}
			if got := p.Allowed(tt.id); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestNewPolicy_InvalidPattern(t *testing.T) {
	if _, err := NewPolicy([]string{"[unterminated"}, nil); err == nil {
		t.Error("expected error for invalid allow pattern")
	}
	if _, err := NewPolicy(nil, []string{"org.[example"}); err == nil {
		t.Error("expected error for invalid deny pattern")
	}
}
