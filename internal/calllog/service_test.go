package calllog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/callbridge/internal/bridge"
	"github.com/Iron-Ham/callbridge/internal/errors"
)

// memStore returns its records unfiltered so the service's own filtering
// and ordering are exercised.
type memStore struct {
	records []CallRecord
	err     error
	panicV  any
	calls   int
	since   int64
}

func (m *memStore) CallsSince(_ context.Context, since int64) ([]CallRecord, error) {
	m.calls++
	m.since = since
	if m.panicV != nil {
		panic(m.panicV)
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make([]CallRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func TestNewService_NilStorePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewService(nil) should panic")
		}
	}()
	NewService(nil)
}

func TestCallsSince(t *testing.T) {
	store := &memStore{records: []CallRecord{
		{Number: "+15550100", TimestampMillis: 1700000000000, Type: TypeIncoming, DurationSeconds: 42},
		{Number: "+15550101", TimestampMillis: 1700000500000, Type: TypeMissed, DurationSeconds: 0},
		{Number: "+15550102", TimestampMillis: 1699999999999, Type: TypeOutgoing, DurationSeconds: 3},
	}}
	svc := NewService(store)

	tests := []struct {
		name  string
		since int64
		want  []CallRecord
	}{
		{
			name:  "boundary is inclusive and newest first",
			since: 1700000000000,
			want: []CallRecord{
				{Number: "+15550101", TimestampMillis: 1700000500000, Type: TypeMissed, DurationSeconds: 0},
				{Number: "+15550100", TimestampMillis: 1700000000000, Type: TypeIncoming, DurationSeconds: 42},
			},
		},
		{
			name:  "zero returns everything",
			since: 0,
			want: []CallRecord{
				{Number: "+15550101", TimestampMillis: 1700000500000, Type: TypeMissed, DurationSeconds: 0},
				{Number: "+15550100", TimestampMillis: 1700000000000, Type: TypeIncoming, DurationSeconds: 42},
				{Number: "+15550102", TimestampMillis: 1699999999999, Type: TypeOutgoing, DurationSeconds: 3},
			},
		},
		{
			name:  "future timestamp returns empty",
			since: 1800000000000,
			want:  []CallRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CallsSince(context.Background(), tt.since)
			if got == nil {
				t.Fatal("CallsSince returned nil, want non-nil slice")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CallsSince(%d) mismatch (-want +got):\n%s", tt.since, diff)
			}
		})
	}
}

func TestCallsSince_TiesKeepStoreOrder(t *testing.T) {
	store := &memStore{records: []CallRecord{
		{Number: "a", TimestampMillis: 10},
		{Number: "b", TimestampMillis: 20},
		{Number: "c", TimestampMillis: 10},
	}}

	got := NewService(store).CallsSince(context.Background(), 0)

	var numbers []string
	for _, r := range got {
		numbers = append(numbers, r.Number)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, numbers); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCallsSince_StoreFailureIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
	}{
		{"error", &memStore{err: fmt.Errorf("open calls: %w", errors.ErrPermissionDenied)}},
		{"panic", &memStore{panicV: "cursor exploded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewService(tt.store).CallsSince(context.Background(), 0)
			if got == nil || len(got) != 0 {
				t.Errorf("CallsSince = %#v, want empty non-nil slice", got)
			}
		})
	}
}

func TestQuery_WrapsHostErrors(t *testing.T) {
	svc := NewService(&memStore{err: errors.ErrStoreUnavailable})

	_, err := svc.Query(context.Background(), 0)
	if !errors.IsHostError(err) {
		t.Fatalf("Query error = %v, want HostError", err)
	}
	if !errors.Is(err, errors.ErrStoreUnavailable) {
		t.Error("Query error should wrap the store's cause")
	}
	if errors.IsUserFacing(err) {
		t.Error("host errors must not be user-facing")
	}
}

func TestQuery_PanicIsCritical(t *testing.T) {
	svc := NewService(&memStore{panicV: "boom"})

	_, err := svc.Query(context.Background(), 0)
	if !errors.Is(err, errors.ErrPanic) {
		t.Fatalf("Query error = %v, want ErrPanic", err)
	}
	if errors.GetSeverity(err) != errors.SeverityCritical {
		t.Errorf("severity = %v, want critical", errors.GetSeverity(err))
	}
}

func TestParseCallType(t *testing.T) {
	for typ := TypeIncoming; typ <= TypeAnsweredExternally; typ++ {
		got, err := ParseCallType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseCallType(%q) = %v, %v; want %v", typ.String(), got, err, typ)
		}
	}
	if _, err := ParseCallType("sideways"); err == nil {
		t.Error("ParseCallType should reject unknown names")
	}
	if got := CallType(42).String(); got != "type(42)" {
		t.Errorf("CallType(42).String() = %q", got)
	}
}

func TestHandler(t *testing.T) {
	store := &memStore{records: []CallRecord{
		{Number: "+15550100", TimestampMillis: 1700000000000, Type: TypeIncoming, DurationSeconds: 42},
	}}
	d := bridge.New()
	if err := d.Register(ChannelName, NewService(store).Handler()); err != nil {
		t.Fatal(err)
	}

	t.Run("success", func(t *testing.T) {
		resp := d.Dispatch(context.Background(), ChannelName, MethodGetCallsSince,
			bridge.Args{ArgTimestamp: int64(1700000000000)})
		if resp.Status != bridge.StatusSuccess {
			t.Fatalf("Status = %q, want success (error %+v)", resp.Status, resp.Error)
		}
		got, ok := resp.Result.([]CallRecord)
		if !ok || len(got) != 1 || got[0].Number != "+15550100" {
			t.Errorf("Result = %#v", resp.Result)
		}
	})

	t.Run("invalid arguments skip the store", func(t *testing.T) {
		before := store.calls
		for _, args := range []bridge.Args{
			nil,
			{ArgTimestamp: "yesterday"},
			{ArgTimestamp: -1},
			{ArgTimestamp: 1.5},
		} {
			resp := d.Dispatch(context.Background(), ChannelName, MethodGetCallsSince, args)
			if resp.Status != bridge.StatusError || resp.Error == nil || resp.Error.Code != bridge.CodeInvalidArgument {
				t.Errorf("args %v: resp = %+v, want INVALID_ARGUMENT", args, resp)
			}
		}
		if store.calls != before {
			t.Errorf("store called %d times for invalid input", store.calls-before)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := d.Dispatch(context.Background(), ChannelName, "deleteCalls", nil)
		if resp.Status != bridge.StatusNotImplemented {
			t.Errorf("Status = %q, want not_implemented", resp.Status)
		}
	})
}
