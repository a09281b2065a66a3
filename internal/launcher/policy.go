package launcher

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Policy decides which application ids may be launched. An id is allowed
// when it matches an allow pattern and no deny pattern.
type Policy struct {
	allow []glob.Glob
	deny  []glob.Glob
}

// AllowAll returns a policy that permits every id.
func AllowAll() *Policy {
	p, _ := NewPolicy([]string{"*"}, nil)
	return p
}

// NewPolicy compiles the allow and deny patterns. '*' matches any run of
// characters, including dots, so "org.example.*" covers every id under
// org.example.
func NewPolicy(allow, deny []string) (*Policy, error) {
	p := &Policy{}
	for _, pattern := range allow {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allow pattern %q: %w", pattern, err)
		}
		p.allow = append(p.allow, g)
	}
	for _, pattern := range deny {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", pattern, err)
		}
		p.deny = append(p.deny, g)
	}
	return p, nil
}

// Allowed reports whether appID may be launched.
func (p *Policy) Allowed(appID string) bool {
	for _, g := range p.deny {
		if g.Match(appID) {
			return false
		}
	}
	for _, g := range p.allow {
		if g.Match(appID) {
			return true
		}
	}
	return false
}
