package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"natively/internal/app/host"
	"natively/internal/app/host/config"
	"natively/internal/bridge"
	"natively/internal/infrastructure/storage/memory"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) frames(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for scanner.Scan() {
		var frame map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &frame))
		out = append(out, frame)
	}
	return out
}

func newApp(t *testing.T, caps bridge.Capabilities) *host.App {
	t.Helper()

	cfg := &config.Config{
		Env:                  config.EnvLocal,
		Platform:             "generic",
		StorageDriver:        config.DriverMemory,
		BridgeTimeout:        2,
		ConnectivityInterval: 1,
		ProductCacheLimit:    10,
		Locale:               "en",
		SyncMaxRetries:       1,
		SyncRetryDelayMS:     1,
	}
	app, err := host.New(context.Background(), cfg, slog.Default(), host.Environment{
		Driver:       memory.New(),
		Capabilities: caps,
	})
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app
}

func TestHost_ServeAnswersEveryCall(t *testing.T) {
	// Arrange
	app := newApp(t, Capabilities(nil))
	input := strings.Join([]string{
		`{"type":"natively.clipboard.write","id":"1","payload":{"text":"hello"}}`,
		``,
		`garbage`,
		`{"type":"natively.share","id":"2","payload":{"message":"x"}}`,
	}, "\n")
	out := &syncBuffer{}
	h := New(app, strings.NewReader(input), out, slog.Default())

	// Act
	err := h.Serve(context.Background())

	// Assert
	require.NoError(t, err)
	frames := out.frames(t)
	require.Len(t, frames, 2)

	byID := map[string]map[string]any{}
	for _, f := range frames {
		byID[f["id"].(string)] = f
	}
	assert.Equal(t, true, byID["1"]["payload"].(map[string]any)["success"])
	assert.Equal(t, false, byID["2"]["payload"].(map[string]any)["success"])
}

func TestHost_Handshake(t *testing.T) {
	app := newApp(t, Capabilities(nil))
	out := &syncBuffer{}
	h := New(app, strings.NewReader(`{"type":"WEB_PAGE_READY"}`+"\n"), out, slog.Default())

	require.NoError(t, h.Serve(context.Background()))

	frames := out.frames(t)
	require.GreaterOrEqual(t, len(frames), 4)
	assert.Equal(t, bridge.PushNativeAppReady, frames[0]["type"])
	_, hasID := frames[0]["id"]
	assert.False(t, hasID)
}

func TestTerminalDialogs_WithoutTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	require.NoError(t, err)
	defer f.Close()

	ok, err := NewTerminalDialogs(f).Confirm(context.Background(), "t", "m", "Delete")

	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoTerminal)
}

func TestTerminalDialogs_ShareAndPick(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	require.NoError(t, err)
	defer f.Close()
	dialogs := NewTerminalDialogs(f)

	shared, shareErr := dialogs.Share(context.Background(), bridge.ShareRequest{Message: "hi"})
	_, cameraErr := dialogs.Pick(context.Background(), bridge.SourceCamera)
	_, libraryErr := dialogs.Pick(context.Background(), bridge.SourceLibrary)

	assert.False(t, shared)
	assert.ErrorIs(t, shareErr, ErrNoTerminal)
	assert.ErrorIs(t, cameraErr, bridge.ErrUnavailable)
	assert.ErrorIs(t, libraryErr, ErrNoTerminal)
}

func TestCapabilities_TerminalWiresDialogs(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	require.NoError(t, err)
	defer f.Close()

	withTTY := Capabilities(f)
	without := Capabilities(nil)

	assert.NotNil(t, withTTY.Dialogs)
	assert.NotNil(t, withTTY.Share)
	assert.NotNil(t, withTTY.ImagePicker)
	assert.Nil(t, without.Dialogs)
	assert.Nil(t, without.Share)
	assert.NotNil(t, without.Clipboard)
}

func TestConfirmed(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{answer: "Delete", want: true},
		{answer: "  delete ", want: true},
		{answer: "yes", want: false},
		{answer: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, confirmed(tt.answer, "Delete"))
		})
	}
}
