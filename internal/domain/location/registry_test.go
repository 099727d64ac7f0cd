package location

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"natively/internal/domain/kv"
	"natively/internal/infrastructure/storage/memory"
)

// MockMonitoring мок движка геозон
type MockMonitoring struct {
	mock.Mock
}

func (m *MockMonitoring) IsActive(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockMonitoring) Start(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockMonitoring) Stop(ctx context.Context) {
	m.Called(ctx)
}

func newRegistry(t *testing.T) (*Registry, *kv.Store) {
	t.Helper()
	store := kv.NewStore(memory.New(), slog.Default())
	return NewRegistry(store, slog.Default()), store
}

func costco() StoreLocation {
	return StoreLocation{ID: "s1", Name: "Costco", Latitude: 1, Longitude: 1, Radius: 100}
}

func TestRegistry_LoadNeverWritten(t *testing.T) {
	r, _ := newRegistry(t)

	got, err := r.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRegistry_AddThenRemoveRestoresSet(t *testing.T) {
	sets := [][]StoreLocation{
		{},
		{{ID: "a", Name: "Aldi", Latitude: 10, Longitude: 20, Radius: 50}},
		{
			{ID: "a", Name: "Aldi", Latitude: 10, Longitude: 20, Radius: 50},
			{ID: "b", Name: "Lidl", Latitude: -10, Longitude: 120, Radius: 250, ListName: "Party"},
		},
	}

	for i, initial := range sets {
		t.Run(fmt.Sprintf("set_%d", i), func(t *testing.T) {
			// Arrange
			r, store := newRegistry(t)
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, kv.KeyStoreLocations, initial))

			// Act
			id, err := r.Add(ctx, costco())
			require.NoError(t, err)
			require.NoError(t, r.Remove(ctx, id))

			// Assert
			got, err := r.Load(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, initial, got)
		})
	}
}

func TestRegistry_AddAssignsTimeOrderedID(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	loc := costco()
	loc.ID = ""
	first, err := r.Add(ctx, loc)
	require.NoError(t, err)
	second, err := r.Add(ctx, loc)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
}

func TestRegistry_AddRejects(t *testing.T) {
	tests := []struct {
		name    string
		loc     StoreLocation
		wantErr error
	}{
		{"zero radius", StoreLocation{ID: "x", Name: "X", Radius: 0}, ErrInvalidLocation},
		{"negative radius", StoreLocation{ID: "x", Name: "X", Radius: -5}, ErrInvalidLocation},
		{"missing name", StoreLocation{ID: "x", Radius: 10}, ErrInvalidLocation},
		{"latitude out of range", StoreLocation{ID: "x", Name: "X", Latitude: 91, Radius: 10}, ErrInvalidLocation},
		{"longitude out of range", StoreLocation{ID: "x", Name: "X", Longitude: -181, Radius: 10}, ErrInvalidLocation},
		{"duplicate id", costco(), ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r, _ := newRegistry(t)
			ctx := context.Background()
			_, err := r.Add(ctx, costco())
			require.NoError(t, err)

			// Act
			_, err = r.Add(ctx, tt.loc)

			// Assert
			assert.ErrorIs(t, err, tt.wantErr)
			got, _ := r.Load(ctx)
			assert.Len(t, got, 1)
		})
	}
}

func TestRegistry_RemoveAbsentIsNoop(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()
	_, err := r.Add(ctx, costco())
	require.NoError(t, err)

	monitoring := new(MockMonitoring)
	r.Attach(monitoring)

	assert.NoError(t, r.Remove(ctx, "missing"))

	got, _ := r.Load(ctx)
	assert.Len(t, got, 1)
	monitoring.AssertNotCalled(t, "IsActive", mock.Anything)
}

func TestRegistry_RestartWhenActive(t *testing.T) {
	tests := []struct {
		name        string
		active      bool
		prepare     []StoreLocation
		remove      string
		expectStart bool
	}{
		{
			name:   "inactive monitoring is left alone",
			active: false,
			remove: "s1",
		},
		{
			name:        "active with remaining stores restarts",
			active:      true,
			prepare:     []StoreLocation{{ID: "s2", Name: "Target", Latitude: 2, Longitude: 2, Radius: 80}},
			remove:      "s1",
			expectStart: true,
		},
		{
			name:   "active with empty result only stops",
			active: true,
			remove: "s1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r, _ := newRegistry(t)
			ctx := context.Background()
			_, err := r.Add(ctx, costco())
			require.NoError(t, err)
			for _, l := range tt.prepare {
				_, err := r.Add(ctx, l)
				require.NoError(t, err)
			}

			monitoring := new(MockMonitoring)
			monitoring.On("IsActive", mock.Anything).Return(tt.active)
			if tt.active {
				monitoring.On("Stop", mock.Anything).Return()
			}
			if tt.expectStart {
				monitoring.On("Start", mock.Anything).Return(true)
			}
			r.Attach(monitoring)

			// Act
			require.NoError(t, r.Remove(ctx, tt.remove))

			// Assert
			monitoring.AssertExpectations(t)
			if !tt.active {
				monitoring.AssertNotCalled(t, "Stop", mock.Anything)
			}
			if !tt.expectStart {
				monitoring.AssertNotCalled(t, "Start", mock.Anything)
			}
		})
	}
}

func TestRegistry_RestartFailureKeepsPersistedState(t *testing.T) {
	// Arrange
	r, _ := newRegistry(t)
	ctx := context.Background()

	monitoring := new(MockMonitoring)
	monitoring.On("IsActive", mock.Anything).Return(true)
	monitoring.On("Stop", mock.Anything).Return()
	monitoring.On("Start", mock.Anything).Return(false)
	r.Attach(monitoring)

	// Act
	id, err := r.Add(ctx, costco())

	// Assert
	require.NoError(t, err)
	got, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	monitoring.AssertExpectations(t)
}

func TestRegistry_ConcurrentMutationsConverge(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Add(ctx, StoreLocation{
				ID:        fmt.Sprintf("store-%02d", i),
				Name:      "Store",
				Latitude:  1,
				Longitude: 1,
				Radius:    10,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestRegistry_FindAndCancelledContext(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()
	_, err := r.Add(ctx, costco())
	require.NoError(t, err)

	loc, found, err := r.Find(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Costco", loc.Name)

	_, found, err = r.Find(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Add(cancelled, StoreLocation{ID: "s9", Name: "Late", Radius: 5})
	assert.Error(t, err)
}
