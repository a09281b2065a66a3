package launcher

import (
	"context"

	"github.com/Iron-Ham/callbridge/internal/intent"
)

// Activity is one launchable entry point the platform resolved for an
// intent.
type Activity struct {
	ID   string // platform-specific entry id
	Name string // display name
}

// Platform is the host launch facility.
type Platform interface {
	// LaunchEntry returns the application's own launch intent. found is
	// false when the application declares none.
	LaunchEntry(ctx context.Context, appID string) (in intent.Intent, found bool, err error)

	// QueryActivities returns the activities that would handle in.
	QueryActivities(ctx context.Context, in intent.Intent) ([]Activity, error)

	// Start starts the target described by in.
	Start(ctx context.Context, in intent.Intent) error
}
