package launcher

import (
	"context"

	"github.com/Iron-Ham/callbridge/internal/bridge"
)

// Channel vocabulary.
const (
	ChannelName     = "launcher"
	MethodLaunchApp = "launchApp"
	ArgPackageName  = "packageName"
)

// Handler returns the bridge handler for the launcher channel.
func (s *Service) Handler() bridge.Handler {
	return bridge.Methods(map[string]bridge.Handler{
		MethodLaunchApp: s.handleLaunchApp,
	})
}

func (s *Service) handleLaunchApp(ctx context.Context, call bridge.Call) (any, error) {
	appID, err := call.Args.String(ArgPackageName)
	if err != nil {
		return nil, err
	}
	return s.Launch(ctx, appID), nil
}
