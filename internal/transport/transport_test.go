package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/Iron-Ham/callbridge/internal/bridge"
)

// echoDispatcher answers every call with its own arguments and records the
// calls it saw.
type echoDispatcher struct {
	mu    sync.Mutex
	calls []string
}

func (e *echoDispatcher) Dispatch(_ context.Context, channel, method string, args bridge.Args) bridge.Response {
	e.mu.Lock()
	e.calls = append(e.calls, channel+"."+method)
	e.mu.Unlock()

	if method == "missing" {
		return bridge.NotImplemented()
	}
	return bridge.Success(map[string]any(args))
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr bool
	}{
		{"valid", `{"id":1,"channel":"c","method":"m","args":{"timestamp":1700000000000}}`, false},
		{"no args", `{"channel":"c","method":"m"}`, false},
		{"not json", `{oops`, true},
		{"no channel", `{"method":"m"}`, true},
		{"no method", `{"channel":"c"}`, true},
		{"args not an object", `{"channel":"c","method":"m","args":[1]}`, true},
		{"trailing data", `{"channel":"c","method":"m"} {}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(tt.frame))
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeRequest_KeepsLargeIntegers(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"channel":"c","method":"m","args":{"timestamp":9007199254740993}}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := req.Args.Int64("timestamp")
	if err != nil || got != 9007199254740993 {
		t.Errorf("Int64 = %d, %v; want exact value", got, err)
	}
}

func TestHandleFrame_BadRequestKeepsID(t *testing.T) {
	d := &echoDispatcher{}

	resp, _, _ := handleFrame(context.Background(), d, []byte(`{"id":"abc","method":"m"}`))
	if resp.Status != bridge.StatusError || resp.Error == nil || resp.Error.Code != CodeBadRequest {
		t.Fatalf("resp = %+v, want BAD_REQUEST", resp)
	}
	if string(resp.ID) != `"abc"` {
		t.Errorf("ID = %s, want \"abc\"", resp.ID)
	}
	if len(d.calls) != 0 {
		t.Errorf("dispatcher called for bad frame: %v", d.calls)
	}
}

func TestServeStream(t *testing.T) {
	d := &echoDispatcher{}
	in := strings.Join([]string{
		`{"id":1,"channel":"c","method":"echo","args":{"k":"v"}}`,
		``,
		`garbage`,
		`{"id":2,"channel":"c","method":"missing"}`,
	}, "\n")

	var out bytes.Buffer
	if err := ServeStream(context.Background(), d, strings.NewReader(in), &out, nil); err != nil {
		t.Fatalf("ServeStream failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d response lines, want 3:\n%s", len(lines), out.String())
	}

	var got []map[string]any
	for _, l := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("response %q is not JSON: %v", l, err)
		}
		got = append(got, m)
	}

	want := []map[string]any{
		{"id": float64(1), "status": "success", "result": map[string]any{"k": "v"}},
		{"id": nil, "status": "error", "result": nil, "error": map[string]any{"code": CodeBadRequest, "message": got[1]["error"].(map[string]any)["message"]}},
		{"id": float64(2), "status": "not_implemented", "result": nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("responses mismatch (-want +got):\n%s", diff)
	}
}

func TestServeStream_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &echoDispatcher{}
	var out bytes.Buffer
	err := ServeStream(ctx, d, strings.NewReader(`{"channel":"c","method":"m"}`+"\n"), &out, nil)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestServer_RoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	d := &echoDispatcher{}
	connected := make(chan string, 1)
	srv := NewServer(d,
		WithListenAddr("127.0.0.1:0"),
		WithPath("/bridge"),
		WithConnectHook(func(id string) { connected <- id }))

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, srv.URL())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	select {
	case id := <-connected:
		if id == "" {
			t.Error("connect hook got empty id")
		}
	case <-ctx.Done():
		t.Fatal("connect hook never ran")
	}

	resp, err := client.Call(ctx, "c", "echo", bridge.Args{"packageName": "org.example.app"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if resp.Status != bridge.StatusSuccess {
		t.Fatalf("Status = %q", resp.Status)
	}
	if diff := cmp.Diff(map[string]any{"packageName": "org.example.app"}, resp.Result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	resp, err = client.Call(ctx, "c", "missing", nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if resp.Status != bridge.StatusNotImplemented {
		t.Errorf("Status = %q, want not_implemented", resp.Status)
	}
}

func TestServer_ShutdownClosesClients(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := NewServer(&echoDispatcher{}, WithListenAddr("127.0.0.1:0"))
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, srv.URL())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	// Make sure the server side is registered before shutting down.
	if _, err := client.Call(ctx, "c", "echo", nil); err != nil {
		t.Fatal(err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if _, err := client.Call(ctx, "c", "echo", nil); err == nil {
		t.Error("Call after Shutdown should fail")
	}
}
