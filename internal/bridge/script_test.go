package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestResponseScript(t *testing.T) {
	script, err := ResponseScript(Response{ID: `a"1`, Payload: json.RawMessage(`{"text":"</script>"}`)})

	require.NoError(t, err)
	assert.Equal(t, `window.natively && window.natively.__resolve("a\"1", {"text":"</script>"});`, script)
}

func TestResponseScript_EmptyPayload(t *testing.T) {
	script, err := ResponseScript(Response{ID: "1"})

	require.NoError(t, err)
	assert.Contains(t, script, `__resolve("1", null)`)
}

func TestPushScript(t *testing.T) {
	push, err := NewPush(PushSyncStatus, map[string]any{"isSyncing": false, "queueSize": 2, "isOnline": true})
	require.NoError(t, err)

	script, err := PushScript(push)

	require.NoError(t, err)
	assert.Contains(t, script, "new MessageEvent('message'")
	assert.Contains(t, script, `"type":"SYNC_STATUS"`)
	assert.Contains(t, script, `"queueSize":2`)
}

func TestBootstrapScript(t *testing.T) {
	script, err := BootstrapScript(BootstrapConfig{
		Platform:    "ios",
		PostMessage: "window.webkit.messageHandlers.natively.postMessage(msg)",
		Timeout:     3 * time.Second,
	})

	require.NoError(t, err)
	assert.Contains(t, script, `platform: "ios"`)
	assert.Contains(t, script, "window.webkit.messageHandlers.natively.postMessage(msg);")
	assert.Contains(t, script, "? 300000 : 3000);")
	assert.Contains(t, script, `"natively.account.delete"`)
	assert.Contains(t, script, `window.natively.send("WEB_PAGE_READY")`)
}

func TestBootstrapScript_InteractiveTimeoutNotBelowRegular(t *testing.T) {
	script, err := BootstrapScript(BootstrapConfig{
		Platform:           "web",
		PostMessage:        "send(msg)",
		Timeout:            20 * time.Second,
		InteractiveTimeout: time.Second,
	})

	require.NoError(t, err)
	assert.Contains(t, script, "? 20000 : 20000);")
}

func TestScriptChannel(t *testing.T) {
	// Arrange
	var injected []string
	ch := NewScriptChannel(InjectorFunc(func(_ context.Context, script string) error {
		injected = append(injected, script)
		return nil
	}))
	hub := NewHub(slog.Default())
	leave := hub.Join(ch)

	// Act
	require.NoError(t, ch.Respond(context.Background(), Response{ID: "1", Payload: json.RawMessage(`{"success":true}`)}))
	hub.Broadcast(context.Background(), PushToken, TokenPayload{Token: "tok"})
	leave()
	hub.Broadcast(context.Background(), PushToken, TokenPayload{Token: "ignored"})

	// Assert
	require.Len(t, injected, 2)
	assert.Contains(t, injected[0], "__resolve")
	assert.Contains(t, injected[1], `"token":"tok"`)
	assert.Zero(t, hub.Len())
}
