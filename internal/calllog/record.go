package calllog

import (
	"context"
	"fmt"
)

// CallType is the platform call-type code of a record.
type CallType int

// Platform call-type codes. Unknown codes are carried through unchanged.
const (
	TypeIncoming           CallType = 1
	TypeOutgoing           CallType = 2
	TypeMissed             CallType = 3
	TypeVoicemail          CallType = 4
	TypeRejected           CallType = 5
	TypeBlocked            CallType = 6
	TypeAnsweredExternally CallType = 7
)

// String returns the lower-case name of the call type.
func (t CallType) String() string {
	switch t {
	case TypeIncoming:
		return "incoming"
	case TypeOutgoing:
		return "outgoing"
	case TypeMissed:
		return "missed"
	case TypeVoicemail:
		return "voicemail"
	case TypeRejected:
		return "rejected"
	case TypeBlocked:
		return "blocked"
	case TypeAnsweredExternally:
		return "answered_externally"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseCallType accepts a call-type name as printed by String.
func ParseCallType(s string) (CallType, error) {
	for t := TypeIncoming; t <= TypeAnsweredExternally; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown call type %q", s)
}

// CallRecord is one row of the host call history. The JSON form is the
// wire shape returned to the UI.
type CallRecord struct {
	Number          string   `json:"number"`
	TimestampMillis int64    `json:"date"`
	Type            CallType `json:"type"`
	DurationSeconds int      `json:"duration"`
}

// Store is the host call-history store.
type Store interface {
	// CallsSince returns records with a timestamp >= sinceMillis, newest
	// first, ties in the store's native order.
	CallsSince(ctx context.Context, sinceMillis int64) ([]CallRecord, error)
}
