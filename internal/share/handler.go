package share

import (
	"context"

	"github.com/Iron-Ham/callbridge/internal/bridge"
)

// Channel vocabulary.
const (
	ChannelName         = "share"
	MethodGetSharedText = "getSharedText"
)

// Handler returns the bridge handler for the share channel. The result is
// the pending text, or nil when the cell is empty.
func (t *Tracker) Handler() bridge.Handler {
	return bridge.Methods(map[string]bridge.Handler{
		MethodGetSharedText: t.handleGetSharedText,
	})
}

func (t *Tracker) handleGetSharedText(context.Context, bridge.Call) (any, error) {
	text, ok := t.Take()
	if !ok {
		return nil, nil
	}
	return text, nil
}
