// Package intent defines the platform message used for both inbound
// activations and outbound launch requests.
package intent

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Well-known actions.
const (
	ActionMain = "main"
	ActionSend = "send"
)

// Well-known categories.
const (
	CategoryLauncher = "launcher"
	CategoryDefault  = "default"
)

// MIME type of a plain-text share payload.
const MimeTextPlain = "text/plain"

// ExtraText is the extras key carrying shared text.
const ExtraText = "text"

// Flags modify how a launch request is started.
type Flags uint32

const (
	// FlagNewTask starts the target as a new, independent task.
	FlagNewTask Flags = 1 << iota
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Intent is an addressed request to the host platform.
type Intent struct {
	Action     string            `json:"action"`
	MimeType   string            `json:"type,omitempty"`
	Package    string            `json:"package,omitempty"`
	Component  string            `json:"component,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Flags      Flags             `json:"flags,omitempty"`
	Extras     map[string]string `json:"extras,omitempty"`
}

// NewShareText builds the activation produced by a plain-text share.
func NewShareText(text string) Intent {
	return Intent{
		Action:   ActionSend,
		MimeType: MimeTextPlain,
		Extras:   map[string]string{ExtraText: text},
	}
}

// NewLauncherMain builds a main-entry launch request scoped to pkg,
// restricted to launcher entries and flagged as a new task.
func NewLauncherMain(pkg string) Intent {
	return Intent{
		Action:     ActionMain,
		Package:    pkg,
		Categories: []string{CategoryLauncher},
		Flags:      FlagNewTask,
	}
}

// HasCategory reports whether c is one of the intent's categories.
func (i Intent) HasCategory(c string) bool {
	return slices.Contains(i.Categories, c)
}

// Extra returns the named extra and whether it was present.
func (i Intent) Extra(key string) (string, bool) {
	v, ok := i.Extras[key]
	return v, ok
}

// Text returns the shared text of a send intent whose MIME type is one of
// mimeTypes. ok is false when the intent does not qualify.
func (i Intent) Text(mimeTypes []string) (text string, ok bool) {
	if i.Action != ActionSend {
		return "", false
	}
	if !slices.ContainsFunc(mimeTypes, func(m string) bool { return strings.EqualFold(m, i.MimeType) }) {
		return "", false
	}
	return i.Extra(ExtraText)
}

// String renders a compact, log-friendly form.
func (i Intent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "intent{act=%s", i.Action)
	if i.MimeType != "" {
		fmt.Fprintf(&b, " typ=%s", i.MimeType)
	}
	if i.Package != "" {
		fmt.Fprintf(&b, " pkg=%s", i.Package)
	}
	if i.Component != "" {
		fmt.Fprintf(&b, " cmp=%s", i.Component)
	}
	if len(i.Categories) > 0 {
		fmt.Fprintf(&b, " cat=[%s]", strings.Join(i.Categories, ","))
	}
	if i.Flags != 0 {
		fmt.Fprintf(&b, " flg=0x%x", uint32(i.Flags))
	}
	b.WriteString("}")
	return b.String()
}

// Decode parses a JSON-encoded intent. An intent without an action is rejected.
func Decode(data []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	if in.Action == "" {
		return Intent{}, fmt.Errorf("decode intent: missing action")
	}
	return in, nil
}
