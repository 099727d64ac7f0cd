package ops

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"natively/internal/bridge"
	"natively/internal/domain/catalog"
	"natively/internal/domain/geofence"
	"natively/internal/domain/kv"
	"natively/internal/domain/location"
	"natively/internal/domain/offline"
	"natively/internal/domain/permission"
	"natively/internal/domain/preference"
	"natively/internal/infrastructure/storage/memory"
)

// MockHaptics мок тактильного отклика
type MockHaptics struct {
	mock.Mock
}

func (m *MockHaptics) Impact(ctx context.Context, style bridge.ImpactStyle) error {
	return m.Called(ctx, style).Error(0)
}

func (m *MockHaptics) Notify(ctx context.Context, feedback bridge.NotificationFeedback) error {
	return m.Called(ctx, feedback).Error(0)
}

// MockDialogs мок окна подтверждения
type MockDialogs struct {
	mock.Mock
}

func (m *MockDialogs) Confirm(ctx context.Context, title, message, confirmLabel string) (bool, error) {
	args := m.Called(ctx, title, message, confirmLabel)
	return args.Bool(0), args.Error(1)
}

type memoryClipboard struct {
	text string
}

func (c *memoryClipboard) ReadText(context.Context) (string, error) { return c.text, nil }

func (c *memoryClipboard) WriteText(_ context.Context, text string) error {
	c.text = text
	return nil
}

type cancelledPicker struct{}

func (cancelledPicker) Pick(context.Context, bridge.ImageSource) (string, error) { return "", nil }

type staticContacts []bridge.Contact

func (s staticContacts) All(context.Context) ([]bridge.Contact, error) { return s, nil }

type fixture struct {
	dispatcher *bridge.Dispatcher
	ops        *Ops
	store      *kv.Store
	registry   *location.Registry
	engine     *geofence.Engine
	monitor    *geofence.SimulatedMonitor
	prompter   *permission.StaticPrompter
	queue      *offline.Queue
}

func newFixture(t *testing.T, caps bridge.Capabilities) *fixture {
	t.Helper()

	log := slog.Default()
	store := kv.NewStore(memory.New(), log)
	registry := location.NewRegistry(store, log)
	prompter := permission.AllGranted()
	perms := NewPermissions(prompter, log)
	monitor := geofence.NewSimulatedMonitor()
	prefs := preference.NewService(store, log)
	engine := geofence.NewEngine(registry, perms.Location, monitor, geofence.NotifierFunc(func(context.Context, geofence.Notification) error {
		return nil
	}), log, nil).WithPreferences(prefs)
	registry.Attach(engine)
	queue := offline.NewQueue(store, log)

	o := New(Deps{
		Platform:     "web",
		Capabilities: caps,
		Permissions:  perms,
		Store:        store,
		Registry:     registry,
		Geofencing:   engine,
		Preferences:  prefs,
		Lists:        catalog.NewLists(store, queue, log),
		Products:     catalog.NewProducts(store, queue, 0, log),
		Hub:          bridge.NewHub(log),
		Log:          log,
	})

	d := bridge.NewDispatcher(log, bridge.WithValidator(bridge.MustValidator()))
	o.Register(d)

	return &fixture{
		dispatcher: d,
		ops:        o,
		store:      store,
		registry:   registry,
		engine:     engine,
		monitor:    monitor,
		prompter:   prompter,
		queue:      queue,
	}
}

func (f *fixture) call(t *testing.T, msgType string, payload string) map[string]any {
	t.Helper()

	msg := bridge.Message{Type: msgType, ID: "test-" + msgType}
	if payload != "" {
		msg.Payload = json.RawMessage(payload)
	}

	resp, ok := f.dispatcher.Handle(context.Background(), msg)
	require.True(t, ok, "no response for %s", msgType)

	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Payload, &out))
	return out
}

func TestHapticTrigger_MapsToOnePrimitive(t *testing.T) {
	tests := []struct {
		haptic string
		method string
		arg    any
	}{
		{haptic: "light", method: "Impact", arg: bridge.ImpactLight},
		{haptic: "medium", method: "Impact", arg: bridge.ImpactMedium},
		{haptic: "heavy", method: "Impact", arg: bridge.ImpactHeavy},
		{haptic: "success", method: "Notify", arg: bridge.FeedbackSuccess},
		{haptic: "warning", method: "Notify", arg: bridge.FeedbackWarning},
		{haptic: "error", method: "Notify", arg: bridge.FeedbackError},
	}

	for _, tt := range tests {
		t.Run(tt.haptic, func(t *testing.T) {
			// Arrange
			h := &MockHaptics{}
			h.On(tt.method, mock.Anything, tt.arg).Return(nil).Once()
			f := newFixture(t, bridge.Capabilities{Haptics: h})

			// Act
			out := f.call(t, bridge.TypeHapticTrigger, `{"type":"`+tt.haptic+`"}`)

			// Assert
			assert.Equal(t, true, out["success"])
			h.AssertExpectations(t)
			h.AssertNumberOfCalls(t, "Impact", map[bool]int{true: 1, false: 0}[tt.method == "Impact"])
			h.AssertNumberOfCalls(t, "Notify", map[bool]int{true: 1, false: 0}[tt.method == "Notify"])
		})
	}
}

func TestHapticTrigger_Unavailable(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{})

	out := f.call(t, bridge.TypeHapticTrigger, `{"type":"light"}`)

	assert.Equal(t, false, out["success"])
}

func TestClipboard_RoundTrip(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{Clipboard: &memoryClipboard{}})

	written := f.call(t, bridge.TypeClipboardWrite, `{"text":"2% milk"}`)
	read := f.call(t, bridge.TypeClipboardRead, "")

	assert.Equal(t, true, written["success"])
	assert.Equal(t, "2% milk", read["text"])
}

func TestClipboard_ReadUnavailable(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{})

	out := f.call(t, bridge.TypeClipboardRead, "")

	assert.Equal(t, bridge.CodeUnavailable, out["code"])
}

func TestImagePicker_CancelledReturnsNullURI(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{ImagePicker: cancelledPicker{}})

	out := f.call(t, bridge.TypeImagePicker, `{"source":"camera"}`)

	v, present := out["uri"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestContacts_Search(t *testing.T) {
	// Arrange
	f := newFixture(t, bridge.Capabilities{Contacts: staticContacts{
		{ID: "1", Name: "Anna Petrova", PhoneNumbers: []string{"+7 900 000"}},
		{ID: "2", Name: "Bob", Emails: []string{"bob@example.com"}},
	}})

	// Act
	byName := f.call(t, bridge.TypeContactsSearch, `{"query":"anna"}`)
	byEmail := f.call(t, bridge.TypeContactsSearch, `{"query":"EXAMPLE"}`)

	// Assert
	assert.Len(t, byName["contacts"], 1)
	assert.Equal(t, "anna", byName["query"])
	assert.Len(t, byEmail["contacts"], 1)
}

func TestContacts_GetAllWithoutPermission(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{Contacts: staticContacts{{ID: "1", Name: "Anna"}}})
	f.prompter.Set(permission.Contacts, permission.StatusDenied)

	out := f.call(t, bridge.TypeContactsGetAll, "")

	assert.Empty(t, out["contacts"])
	assert.Equal(t, "permission denied", out["error"])
}

func TestGeofence_AddStartsMonitoringAndRemoveRestarts(t *testing.T) {
	// Arrange
	f := newFixture(t, bridge.Capabilities{})
	ctx := context.Background()

	// Act
	added := f.call(t, bridge.TypeGeofenceAdd, `{"location":{"id":"s1","name":"Costco","latitude":1,"longitude":1,"radius":100}}`)
	f.call(t, bridge.TypeGeofenceAdd, `{"location":{"id":"s2","name":"Aldi","latitude":2,"longitude":2,"radius":50,"listName":"Weekly Groceries"}}`)
	removed := f.call(t, bridge.TypeGeofenceRemove, `{"locationId":"s1"}`)
	status := f.call(t, bridge.TypeGeofenceGetStatus, "")

	// Assert
	assert.Equal(t, true, added["success"])
	assert.Equal(t, "s1", added["locationId"])
	assert.Equal(t, true, removed["success"])
	assert.Equal(t, true, status["isActive"])
	assert.Equal(t, permission.LocationGranted, status["permissionStatus"])
	assert.EqualValues(t, 1, status["locationCount"])

	regions := f.monitor.Regions(geofence.TaskName)
	require.Len(t, regions, 1)
	assert.Equal(t, "s2", regions[0].Identifier)
	assert.True(t, f.engine.IsActive(ctx))
}

func TestGeofence_AddRejectsInvalidRadius(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{})

	out := f.call(t, bridge.TypeGeofenceAdd, `{"location":{"name":"Costco","latitude":1,"longitude":1,"radius":-5}}`)

	assert.Equal(t, bridge.CodeInvalid, out["code"])
}

func TestGeofence_EnableNotifications(t *testing.T) {
	// Arrange
	f := newFixture(t, bridge.Capabilities{})
	ctx := context.Background()
	f.call(t, bridge.TypeGeofenceAdd, `{"location":{"id":"s1","name":"Costco","latitude":1,"longitude":1,"radius":100}}`)
	require.True(t, f.engine.IsActive(ctx))

	// Act
	disabled := f.call(t, bridge.TypeGeofenceEnableNotifications, `{"enabled":false}`)
	activeAfterDisable := f.engine.IsActive(ctx)
	enabled := f.call(t, bridge.TypeGeofenceEnableNotifications, `{"enabled":true}`)

	// Assert
	assert.Equal(t, map[string]any{"success": true, "enabled": false}, disabled)
	assert.False(t, activeAfterDisable)
	assert.Equal(t, map[string]any{"success": true, "enabled": true}, enabled)
	assert.True(t, f.engine.IsActive(ctx))
}

func TestGeofence_RequestPermission(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{})
	f.prompter.Set(permission.LocationBackground, permission.StatusDenied)

	out := f.call(t, bridge.TypeGeofenceRequestPermission, "")

	assert.Equal(t, true, out["foreground"])
	assert.Equal(t, false, out["background"])
	assert.Equal(t, permission.LocationForegroundOnly, out["permissionStatus"])
	assert.Equal(t, "denied", out["status"])
}

func TestStorage_RoundTripInWebNamespace(t *testing.T) {
	// Arrange
	f := newFixture(t, bridge.Capabilities{})

	// Act
	set := f.call(t, bridge.TypeStorageSet, `{"key":"cart","value":{"items":[1,2]}}`)
	got := f.call(t, bridge.TypeStorageGet, `{"key":"cart"}`)
	removed := f.call(t, bridge.TypeStorageRemove, `{"key":"cart"}`)
	missing := f.call(t, bridge.TypeStorageGet, `{"key":"cart"}`)

	// Assert
	assert.Equal(t, true, set["success"])
	assert.Equal(t, map[string]any{"items": []any{float64(1), float64(2)}}, got["value"])
	assert.Equal(t, true, removed["success"])
	v, present := missing["value"]
	assert.True(t, present)
	assert.Nil(t, v)

	_, found, err := f.store.GetRaw(context.Background(), "cart")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorage_CannotTouchHostKeys(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{})
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, kv.KeyStoreLocations, []location.StoreLocation{{ID: "s1", Name: "Costco", Radius: 1}}))

	f.call(t, bridge.TypeStorageRemove, `{"key":"`+kv.KeyStoreLocations+`"}`)

	locations, err := f.registry.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 1)
}

func TestLists_SaveGetDelete(t *testing.T) {
	// Arrange
	f := newFixture(t, bridge.Capabilities{})

	// Act
	saved := f.call(t, bridge.TypeListsSave, `{"list":{"name":"Weekly Groceries","items":[{"name":"Milk"}]}}`)
	listID, _ := saved["listId"].(string)
	got := f.call(t, bridge.TypeListsGet, "")
	deleted := f.call(t, bridge.TypeListsDelete, `{"listId":"`+listID+`"}`)
	after := f.call(t, bridge.TypeListsGet, "")

	// Assert
	assert.Equal(t, true, saved["success"])
	assert.NotEmpty(t, listID)
	assert.Len(t, got["lists"], 1)
	assert.Equal(t, true, deleted["success"])
	assert.Empty(t, after["lists"])

	size, err := f.queue.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestProduct_CacheAndGet(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{})

	cached := f.call(t, bridge.TypeProductCache, `{"product":{"barcode":"4006381333931","name":"Pen"}}`)
	got := f.call(t, bridge.TypeProductGetCached, `{"barcode":"4006381333931"}`)
	missing := f.call(t, bridge.TypeProductGetCached, `{"barcode":"0000"}`)

	assert.Equal(t, "4006381333931", cached["barcode"])
	assert.Equal(t, "Pen", got["product"].(map[string]any)["name"])
	assert.Nil(t, missing["product"])
}

func TestAccountDelete(t *testing.T) {
	tests := []struct {
		name      string
		confirmed bool
		dialogErr error
		want      map[string]any
		wiped     bool
	}{
		{name: "confirmed", confirmed: true, want: map[string]any{"confirmed": true}, wiped: true},
		{name: "cancelled", confirmed: false, want: map[string]any{"cancelled": true}, wiped: false},
		{name: "dialog failed", dialogErr: errors.New("no window"), want: map[string]any{"cancelled": true, "error": "no window"}, wiped: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			dialogs := &MockDialogs{}
			dialogs.On("Confirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.confirmed, tt.dialogErr)
			f := newFixture(t, bridge.Capabilities{Dialogs: dialogs})
			f.call(t, bridge.TypeGeofenceAdd, `{"location":{"id":"s1","name":"Costco","latitude":1,"longitude":1,"radius":100}}`)

			// Act
			out := f.call(t, bridge.TypeAccountDelete, "")

			// Assert
			assert.Equal(t, tt.want, out)
			locations, err := f.registry.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wiped, len(locations) == 0)
			assert.Equal(t, !tt.wiped, f.engine.IsActive(context.Background()))
		})
	}
}

func TestAccountDelete_SlowConfirmation(t *testing.T) {
	tests := []struct {
		name        string
		interactive time.Duration
		wantCode    string
	}{
		{name: "confirmed after regular timeout", interactive: time.Second},
		{name: "call expired before confirmation", interactive: 50 * time.Millisecond, wantCode: bridge.CodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			dialogs := &MockDialogs{}
			dialogs.On("Confirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				After(150*time.Millisecond).
				Return(true, nil)
			f := newFixture(t, bridge.Capabilities{Dialogs: dialogs})
			f.call(t, bridge.TypeGeofenceAdd, `{"location":{"id":"s1","name":"Costco","latitude":1,"longitude":1,"radius":100}}`)

			d := bridge.NewDispatcher(slog.Default(),
				bridge.WithTimeout(50*time.Millisecond),
				bridge.WithInteractiveTimeout(tt.interactive),
			)
			f.ops.Register(d)

			// Act
			resp, ok := d.Handle(context.Background(), bridge.Message{Type: bridge.TypeAccountDelete, ID: "del-1"})

			// Assert
			require.True(t, ok)
			failure, failed := resp.Failed()
			if tt.wantCode == "" {
				assert.False(t, failed)
				assert.JSONEq(t, `{"confirmed":true}`, string(resp.Payload))
			} else {
				require.True(t, failed)
				assert.Equal(t, tt.wantCode, failure.Code)
			}

			// подтвержденное удаление выполняется в любом случае
			assert.Eventually(t, func() bool {
				locations, err := f.registry.Load(context.Background())
				return err == nil && len(locations) == 0
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestNotification_RegisterStoresToken(t *testing.T) {
	f := newFixture(t, bridge.Capabilities{Push: pushFunc(func(context.Context) (string, error) {
		return "ExponentPushToken[abc]", nil
	})})

	registered := f.call(t, bridge.TypeNotificationRegister, "")
	token := f.call(t, bridge.TypeNotificationGetToken, "")

	assert.Equal(t, true, registered["success"])
	assert.Equal(t, "ExponentPushToken[abc]", token["token"])
}

type pushFunc func(ctx context.Context) (string, error)

func (f pushFunc) Register(ctx context.Context) (string, error) { return f(ctx) }
