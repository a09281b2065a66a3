package launcher

import (
	"context"

	"github.com/Iron-Ham/callbridge/internal/intent"
)

// Strategy names.
const (
	StrategyDirectEntry     = "direct-entry"
	StrategySynthesizedMain = "synthesized-main"
)

// Strategy resolves the intent to start for an application.
type Strategy interface {
	Name() string

	// Resolve returns the intent to start. found is false when this
	// strategy has no target and the next one should be tried.
	Resolve(ctx context.Context, p Platform, appID string) (in intent.Intent, found bool, err error)
}

// DefaultStrategies returns direct-entry followed by synthesized-main.
func DefaultStrategies() []Strategy {
	return []Strategy{DirectEntry{}, SynthesizedMain{}}
}

// DirectEntry uses the launch entry the application itself declares.
type DirectEntry struct{}

// Name implements Strategy.
func (DirectEntry) Name() string { return StrategyDirectEntry }

// Resolve implements Strategy.
func (DirectEntry) Resolve(ctx context.Context, p Platform, appID string) (intent.Intent, bool, error) {
	return p.LaunchEntry(ctx, appID)
}

// SynthesizedMain builds a main/launcher intent restricted to the
// application and accepts it only if the platform can resolve it.
type SynthesizedMain struct{}

// Name implements Strategy.
func (SynthesizedMain) Name() string { return StrategySynthesizedMain }

// Resolve implements Strategy.
func (SynthesizedMain) Resolve(ctx context.Context, p Platform, appID string) (intent.Intent, bool, error) {
	in := intent.NewLauncherMain(appID)

	activities, err := p.QueryActivities(ctx, in)
	if err != nil {
		return intent.Intent{}, false, err
	}
	if len(activities) == 0 {
		return intent.Intent{}, false, nil
	}
	return in, true, nil
}
