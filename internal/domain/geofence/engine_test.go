package geofence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
	"natively/internal/domain/location"
	"natively/internal/infrastructure/storage/memory"
)

// MockPermission мок разрешения на геолокацию
type MockPermission struct {
	mock.Mock
}

func (m *MockPermission) Has(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockPermission) Request(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

// recordingNotifier запоминает показанные уведомления
type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

type staticPreference bool

func (p staticPreference) GeofenceNotificationsEnabled(context.Context) bool { return bool(p) }

// failingMonitor отклоняет регистрацию
type failingMonitor struct {
	*SimulatedMonitor
	stopCalls int
}

func (m *failingMonitor) StartRegions(context.Context, string, []Region) error {
	return errors.New("too many regions")
}

func (m *failingMonitor) StopRegions(ctx context.Context, task string) error {
	m.stopCalls++
	return m.SimulatedMonitor.StopRegions(ctx, task)
}

// blindMonitor не может сообщить статус регистрации
type blindMonitor struct {
	*SimulatedMonitor
	stopCalls int
}

func (m *blindMonitor) IsRegistered(context.Context, string) (bool, error) {
	return false, errors.New("status unavailable")
}

func (m *blindMonitor) StopRegions(ctx context.Context, task string) error {
	m.stopCalls++
	return m.SimulatedMonitor.StopRegions(ctx, task)
}

type fixture struct {
	registry *location.Registry
	monitor  *SimulatedMonitor
	notifier *recordingNotifier
	perm     *MockPermission
	engine   *Engine
	clock    *time.Time
}

func newFixture(t *testing.T, debounce time.Duration) *fixture {
	t.Helper()

	store := kv.NewStore(memory.New(), slog.Default())
	registry := location.NewRegistry(store, slog.Default())
	monitor := NewSimulatedMonitor()
	notifier := &recordingNotifier{}
	perm := &MockPermission{}

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		registry: registry,
		monitor:  monitor,
		notifier: notifier,
		perm:     perm,
		clock:    &clock,
	}

	f.engine = NewEngine(registry, perm, monitor, notifier, slog.Default(), &Config{
		Debounce: debounce,
		Locale:   "en",
		Now:      func() time.Time { return *f.clock },
	})
	registry.Attach(f.engine)

	return f
}

func TestEngine_StartEmptyRegistry(t *testing.T) {
	// Arrange
	f := newFixture(t, 0)
	f.perm.On("Has", mock.Anything).Return(true)
	ctx := context.Background()

	// Act
	started := f.engine.Start(ctx)

	// Assert
	assert.False(t, started)
	assert.False(t, f.engine.IsActive(ctx))
	assert.Equal(t, StateInactive, f.engine.State())
}

func TestEngine_StartPermission(t *testing.T) {
	tests := []struct {
		name        string
		has         bool
		request     bool
		wantStarted bool
		wantPrompts int
	}{
		{name: "already granted", has: true, wantStarted: true, wantPrompts: 0},
		{name: "granted on prompt", has: false, request: true, wantStarted: true, wantPrompts: 1},
		{name: "denied on prompt", has: false, request: false, wantStarted: false, wantPrompts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, 0)
			ctx := context.Background()
			_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
			require.NoError(t, err)

			f.perm.On("Has", mock.Anything).Return(tt.has)
			f.perm.On("Request", mock.Anything).Return(tt.request)

			// Act
			started := f.engine.Start(ctx)

			// Assert
			assert.Equal(t, tt.wantStarted, started)
			assert.Equal(t, tt.wantStarted, f.engine.IsActive(ctx))
			f.perm.AssertNumberOfCalls(t, "Request", tt.wantPrompts)
		})
	}
}

func TestEngine_StartRegistrationRejected(t *testing.T) {
	// Arrange
	store := kv.NewStore(memory.New(), slog.Default())
	registry := location.NewRegistry(store, slog.Default())
	ctx := context.Background()
	_, err := registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)

	perm := &MockPermission{}
	perm.On("Has", mock.Anything).Return(true)
	monitor := &failingMonitor{SimulatedMonitor: NewSimulatedMonitor()}
	engine := NewEngine(registry, perm, monitor, &recordingNotifier{}, slog.Default(), nil)

	// Act
	started := engine.Start(ctx)

	// Assert
	assert.False(t, started)
	assert.Equal(t, StateInactive, engine.State())
	assert.Equal(t, 1, monitor.stopCalls)
}

func TestEngine_StopWithoutStart(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	assert.NotPanics(t, func() { f.engine.Stop(ctx) })
	assert.False(t, f.engine.IsActive(ctx))
}

func TestEngine_IsActiveFollowsSystem(t *testing.T) {
	// Arrange
	f := newFixture(t, 0)
	ctx := context.Background()
	f.perm.On("Has", mock.Anything).Return(true)
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)
	require.True(t, f.engine.Start(ctx))

	// Act
	f.monitor.Revoke(TaskName)

	// Assert
	assert.False(t, f.engine.IsActive(ctx))
	assert.Equal(t, StateInactive, f.engine.State())
}

func TestEngine_AddThenStart(t *testing.T) {
	// Arrange
	f := newFixture(t, 0)
	ctx := context.Background()
	f.perm.On("Has", mock.Anything).Return(true)

	// Act
	id, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)
	started := f.engine.Start(ctx)

	// Assert
	assert.Equal(t, "s1", id)
	assert.True(t, started)
	assert.True(t, f.engine.IsActive(ctx))

	regions := f.monitor.Regions(TaskName)
	require.Len(t, regions, 1)
	assert.True(t, regions[0].NotifyOnEnter)
	assert.False(t, regions[0].NotifyOnExit)
}

func TestEngine_RemoveWhileActiveRestarts(t *testing.T) {
	// Arrange
	f := newFixture(t, 0)
	ctx := context.Background()
	f.perm.On("Has", mock.Anything).Return(true)
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)
	_, err = f.registry.Add(ctx, location.StoreLocation{ID: "s2", Name: "Aldi", Latitude: 2, Longitude: 2, Radius: 80})
	require.NoError(t, err)
	require.True(t, f.engine.Start(ctx))

	// Act
	err = f.registry.Remove(ctx, "s1")

	// Assert
	require.NoError(t, err)
	regions := f.monitor.Regions(TaskName)
	require.Len(t, regions, 1)
	assert.Equal(t, "s2", regions[0].Identifier)
	assert.True(t, f.engine.IsActive(ctx))
}

func TestEngine_RemoveLastStopsMonitoring(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.perm.On("Has", mock.Anything).Return(true)
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)
	require.True(t, f.engine.Start(ctx))

	require.NoError(t, f.registry.Remove(ctx, "s1"))

	assert.False(t, f.engine.IsActive(ctx))
	assert.Empty(t, f.monitor.Regions(TaskName))
}

func TestEngine_HandleRegionEnter(t *testing.T) {
	tests := []struct {
		name      string
		store     location.StoreLocation
		wantTitle string
		wantBody  string
		wantKind  string
	}{
		{
			name:      "list has priority",
			store:     location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100, ListID: "l1", ListName: "Weekly Groceries", ReservationNumber: "R-1"},
			wantTitle: "You're near Costco",
			wantBody:  "Don't forget your list \"Weekly Groceries\".",
			wantKind:  KindList,
		},
		{
			name:      "reservation",
			store:     location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100, ReservationNumber: "R-42"},
			wantTitle: "Your reservation at Costco",
			wantBody:  "Reservation #R-42 is waiting for pickup.",
			wantKind:  KindReservation,
		},
		{
			name:      "generic",
			store:     location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100},
			wantTitle: "You're near Costco",
			wantBody:  "You're close to one of your saved stores.",
			wantKind:  KindNearStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, 0)
			ctx := context.Background()
			_, err := f.registry.Add(ctx, tt.store)
			require.NoError(t, err)

			// Act
			f.engine.HandleRegionEnter(ctx, "s1")

			// Assert
			sent := f.notifier.all()
			require.Len(t, sent, 1)
			assert.Equal(t, tt.wantTitle, sent[0].Title)
			assert.Equal(t, tt.wantBody, sent[0].Body)
			assert.Equal(t, tt.wantKind, sent[0].Data["type"])
			assert.Equal(t, "s1", sent[0].Data["storeId"])
		})
	}
}

func TestEngine_HandleRegionEnterListNameOverGeneric(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100, ListName: "Weekly Groceries"})
	require.NoError(t, err)

	f.engine.HandleRegionEnter(ctx, "s1")

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "Weekly Groceries")
	assert.NotContains(t, sent[0].Body, "saved stores")
}

func TestEngine_HandleRegionEnterUnknownID(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)

	f.engine.HandleRegionEnter(ctx, "ghost")

	assert.Empty(t, f.notifier.all())
}

func TestEngine_HandleRegionEnterPreferenceOff(t *testing.T) {
	f := newFixture(t, 0)
	f.engine.WithPreferences(staticPreference(false))
	ctx := context.Background()
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)

	f.engine.HandleRegionEnter(ctx, "s1")

	assert.Empty(t, f.notifier.all())
}

func TestEngine_HandleRegionEnterDebounce(t *testing.T) {
	// Arrange
	f := newFixture(t, 5*time.Minute)
	ctx := context.Background()
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)

	// Act
	f.engine.HandleRegionEnter(ctx, "s1")
	*f.clock = f.clock.Add(time.Minute)
	f.engine.HandleRegionEnter(ctx, "s1")
	*f.clock = f.clock.Add(5 * time.Minute)
	f.engine.HandleRegionEnter(ctx, "s1")

	// Assert
	assert.Len(t, f.notifier.all(), 2)
}

func TestEngine_HandleRegionEnterFailedNotifyKeepsWindowOpen(t *testing.T) {
	// Arrange
	f := newFixture(t, 5*time.Minute)
	ctx := context.Background()
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)

	// Act
	f.notifier.err = errors.New("notifications revoked")
	f.engine.HandleRegionEnter(ctx, "s1")
	f.notifier.err = nil
	*f.clock = f.clock.Add(time.Minute)
	f.engine.HandleRegionEnter(ctx, "s1")
	*f.clock = f.clock.Add(time.Minute)
	f.engine.HandleRegionEnter(ctx, "s1")

	// Assert
	assert.Len(t, f.notifier.all(), 1)
}

func TestEngine_StopWhenStatusUnknown(t *testing.T) {
	// Arrange
	monitor := &blindMonitor{SimulatedMonitor: NewSimulatedMonitor()}
	store := kv.NewStore(memory.New(), slog.Default())
	registry := location.NewRegistry(store, slog.Default())
	engine := NewEngine(registry, &MockPermission{}, monitor, &recordingNotifier{}, slog.Default(), nil)

	// Act
	engine.Stop(context.Background())

	// Assert
	assert.Equal(t, 1, monitor.stopCalls)
	assert.Equal(t, StateInactive, engine.State())
}

func TestEngine_HandleRegionEnterRussian(t *testing.T) {
	store := kv.NewStore(memory.New(), slog.Default())
	registry := location.NewRegistry(store, slog.Default())
	notifier := &recordingNotifier{}
	engine := NewEngine(registry, &MockPermission{}, NewSimulatedMonitor(), notifier, slog.Default(), &Config{Locale: "ru-RU"})
	ctx := context.Background()
	_, err := registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Ашан", Latitude: 1, Longitude: 1, Radius: 100, ListName: "Продукты"})
	require.NoError(t, err)

	engine.HandleRegionEnter(ctx, "s1")

	sent := notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "Вы рядом с Ашан", sent[0].Title)
	assert.Contains(t, sent[0].Body, "Продукты")
}

func TestTaskRegistry_Dispatch(t *testing.T) {
	// Arrange
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.registry.Add(ctx, location.StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100})
	require.NoError(t, err)

	tasks := NewTaskRegistry(slog.Default())
	f.engine.Register(tasks)

	// Act
	errEnter := tasks.Dispatch(ctx, TaskName, RegionEvent{Kind: EventEnter, Identifier: "s1"})
	errExit := tasks.Dispatch(ctx, TaskName, RegionEvent{Kind: EventExit, Identifier: "s1"})
	errUnknown := tasks.Dispatch(ctx, "other-task", RegionEvent{Kind: EventEnter, Identifier: "s1"})

	// Assert
	require.NoError(t, errEnter)
	require.NoError(t, errExit)
	assert.ErrorIs(t, errUnknown, ErrUnknownTask)
	assert.Len(t, f.notifier.all(), 1)
}

func TestTaskRegistry_DispatchRecoversPanic(t *testing.T) {
	tasks := NewTaskRegistry(slog.Default())
	tasks.Define("boom", func(context.Context, RegionEvent) error {
		panic("broken handler")
	})

	err := tasks.Dispatch(context.Background(), "boom", RegionEvent{Kind: EventEnter})

	assert.Error(t, err)
}
