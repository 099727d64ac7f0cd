package recovery

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type recorded struct {
	cause any
	attrs map[string]string
}

type fakeRecorder struct {
	mu      sync.Mutex
	reports []recorded
}

func (f *fakeRecorder) Record(_ context.Context, cause any, attrs map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, recorded{cause: cause, attrs: attrs})
}

type okOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func TestRecovery_Middleware(t *testing.T) {
	tests := []struct {
		name        string
		panics      bool
		wantStatus  int
		wantReports int
	}{
		{name: "handler panics", panics: true, wantStatus: http.StatusInternalServerError, wantReports: 1},
		{name: "handler succeeds", panics: false, wantStatus: http.StatusOK, wantReports: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			crashes := &fakeRecorder{}
			mw := New(crashes, slog.Default()).Middleware()
			_, api := humatest.New(t)

			huma.Register(api, huma.Operation{
				OperationID: "explode",
				Method:      http.MethodGet,
				Path:        "/explode",
				Middlewares: huma.Middlewares{mw},
			}, func(ctx context.Context, _ *struct{}) (*okOutput, error) {
				if tt.panics {
					panic("store index out of range")
				}
				out := &okOutput{}
				out.Body.Status = "OK"
				return out, nil
			})

			// Act
			resp := api.Get("/explode")

			// Assert
			assert.Equal(t, tt.wantStatus, resp.Code)
			require.Len(t, crashes.reports, tt.wantReports)
			if tt.wantReports > 0 {
				assert.Equal(t, "store index out of range", crashes.reports[0].cause)
				assert.Equal(t, "/explode", crashes.reports[0].attrs["path"])
				assert.Equal(t, http.MethodGet, crashes.reports[0].attrs["method"])
			}
		})
	}
}
