package syncapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"natively/internal/domain/offline"
)

type captured struct {
	method string
	path   string
	key    string
	body   string
}

func newServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()

	var mu sync.Mutex
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, captured{method: r.Method, path: r.URL.Path, key: r.Header.Get(IdempotencyHeader), body: string(body)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 && status != http.StatusConflict {
			_, _ = w.Write([]byte(`{"error":"list is locked"}`))
		}
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestClient_ApplyRoutes(t *testing.T) {
	tests := []struct {
		name       string
		op         offline.Operation
		resource   offline.Resource
		wantMethod string
		wantPath   string
		wantBody   bool
	}{
		{name: "create list", op: offline.OpCreate, resource: offline.ResourceList, wantMethod: http.MethodPost, wantPath: "/api/v1/lists", wantBody: true},
		{name: "update item", op: offline.OpUpdate, resource: offline.ResourceItem, wantMethod: http.MethodPut, wantPath: "/api/v1/items/r1", wantBody: true},
		{name: "delete product", op: offline.OpDelete, resource: offline.ResourceProduct, wantMethod: http.MethodDelete, wantPath: "/api/v1/products/r1", wantBody: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			srv, calls := newServer(t, http.StatusOK)
			c := New(Config{BaseURL: srv.URL + "/"}, slog.Default())
			item, err := offline.NewItem(tt.op, tt.resource, "r1", map[string]string{"name": "Milk"}, time.UnixMilli(1000))
			require.NoError(t, err)

			// Act
			err = c.Apply(context.Background(), item)

			// Assert
			require.NoError(t, err)
			require.Len(t, *calls, 1)
			got := (*calls)[0]
			assert.Equal(t, tt.wantMethod, got.method)
			assert.Equal(t, tt.wantPath, got.path)
			assert.Equal(t, item.ID, got.key)
			assert.True(t, strings.HasPrefix(got.key, "1000_r1_"))
			assert.Equal(t, tt.wantBody, got.body != "")
		})
	}
}

func TestClient_ApplyStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr string
	}{
		{name: "created", status: http.StatusCreated},
		{name: "already applied", status: http.StatusConflict},
		{name: "server error", status: http.StatusUnprocessableEntity, wantErr: "list is locked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status)
			c := New(Config{BaseURL: srv.URL}, slog.Default())
			item, err := offline.NewItem(offline.OpCreate, offline.ResourceList, "l1", nil, time.Now())
			require.NoError(t, err)

			err = c.Apply(context.Background(), item)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c := New(Config{}, slog.Default())

	assert.ErrorIs(t, c.Apply(context.Background(), offline.QueueItem{ID: "1_a", Type: offline.OpCreate, Resource: offline.ResourceList}), ErrNotConfigured)
	assert.ErrorIs(t, c.HealthCheck(context.Background()), ErrNotConfigured)
}

func TestClient_HealthCheck(t *testing.T) {
	up, _ := newServer(t, http.StatusOK)
	down, _ := newServer(t, http.StatusServiceUnavailable)

	assert.NoError(t, New(Config{ProbeURL: up.URL}, slog.Default()).HealthCheck(context.Background()))
	assert.Error(t, New(Config{ProbeURL: down.URL}, slog.Default()).HealthCheck(context.Background()))
}

func TestClient_DrainAgainstServer(t *testing.T) {
	// Arrange
	srv, calls := newServer(t, http.StatusOK)
	c := New(Config{BaseURL: srv.URL, ProbeURL: srv.URL}, slog.Default())
	item, err := offline.NewItem(offline.OpCreate, offline.ResourceList, "l1", map[string]string{"name": "Party"}, time.Now())
	require.NoError(t, err)

	// Act
	err = c.Apply(context.Background(), item)

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Party"}`, (*calls)[0].body)
}
