package calllog

import (
	"context"

	"github.com/Iron-Ham/callbridge/internal/bridge"
)

// Channel vocabulary.
const (
	ChannelName         = "call_log"
	MethodGetCallsSince = "getCallsSince"
	ArgTimestamp        = "timestamp"
)

// Handler returns the bridge handler for the call-log channel.
func (s *Service) Handler() bridge.Handler {
	return bridge.Methods(map[string]bridge.Handler{
		MethodGetCallsSince: s.handleGetCallsSince,
	})
}

func (s *Service) handleGetCallsSince(ctx context.Context, call bridge.Call) (any, error) {
	since, err := call.Args.NonNegativeInt64(ArgTimestamp)
	if err != nil {
		return nil, err
	}
	return s.CallsSince(ctx, since), nil
}
